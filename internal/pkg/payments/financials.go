package payments

import (
	"log"
	"time"

	"github.com/tablo-app/tablo/app/models"
	"github.com/tablo-app/tablo/app/repository"
)

const financialsWindow = 30 * 24 * time.Hour

// ChartPoint is one day of commission revenue for the dashboard chart.
type ChartPoint struct {
	Date       string  `json:"date"`
	Commission float64 `json:"commission"`
}

// FinancialReport is the platform operator's dashboard payload. Sources
// records, per data source, whether the figure is live or degraded to its
// zero value because the underlying query failed.
type FinancialReport struct {
	MRR                float64           `json:"mrr"`
	ActiveSubs         int               `json:"activeSubs"`
	TTV30d             float64           `json:"ttv30d"`
	TotalCommission30d float64           `json:"totalCommission30d"`
	StripeBalance      float64           `json:"stripeBalance"`
	ChartData          []ChartPoint      `json:"chartData"`
	Sources            map[string]string `json:"sources"`
}

// ReportCache stores assembled reports between requests. A nil cache
// disables caching.
type ReportCache interface {
	GetReport() (*FinancialReport, bool)
	StoreReport(report *FinancialReport)
}

// FinancialsService recomputes platform financial summaries by combining
// ledger scans with live gateway balance and fee queries. Each source is
// independently guarded so one broken dependency degrades its figure to
// zero instead of blanking the whole report.
type FinancialsService struct {
	restaurants repository.RestaurantRepository
	orders      repository.OrderRepository
	gateway     Gateway
	cache       ReportCache
}

// NewFinancialsService creates the reporting aggregator.
func NewFinancialsService(
	restaurants repository.RestaurantRepository,
	orders repository.OrderRepository,
	gateway Gateway,
	cache ReportCache,
) *FinancialsService {
	return &FinancialsService{
		restaurants: restaurants,
		orders:      orders,
		gateway:     gateway,
		cache:       cache,
	}
}

// planMonthlyPrice is the deterministic price-per-plan lookup used for MRR.
func planMonthlyPrice(planType string) float64 {
	switch planType {
	case models.PLAN_GRANDE_RESERVE:
		return 149
	case models.PLAN_BUSINESS_LOUNGE:
		return 89
	default:
		return 49 // Bistro Pro is the default tier
	}
}

// Report assembles the dashboard figures, serving a cached copy when one is
// fresh.
func (s *FinancialsService) Report() (*FinancialReport, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetReport(); ok {
			return cached, nil
		}
	}

	now := time.Now()
	windowStart := now.Add(-financialsWindow)
	report := &FinancialReport{
		Sources: map[string]string{},
	}

	// MRR from the tenant table.
	if restaurants, err := s.restaurants.List(); err != nil {
		log.Printf("financials: restaurant scan failed: %v", err)
		report.Sources["mrr"] = "degraded"
	} else {
		for _, r := range restaurants {
			if r.SubscriptionStatus == models.SUBSCRIPTION_ACTIVE || r.SubscriptionStatus == models.SUBSCRIPTION_TRIAL {
				report.ActiveSubs++
				report.MRR += planMonthlyPrice(r.PlanType)
			}
		}
		report.Sources["mrr"] = "ok"
	}

	// Cash in hand from the gateway balance.
	if balance, err := s.gateway.GetBalance(); err != nil {
		log.Printf("financials: balance query failed: %v", err)
		report.Sources["balance"] = "degraded"
	} else {
		var cents int64
		for _, amount := range balance.Available {
			cents += amount.Amount
		}
		for _, amount := range balance.Pending {
			cents += amount.Amount
		}
		report.StripeBalance = float64(cents) / 100
		report.Sources["balance"] = "ok"
	}

	// Commission revenue over the trailing window, bucketed per day.
	revenueByDay := map[string]float64{}
	if fees, err := s.gateway.ListApplicationFees(windowStart.Unix(), 100); err != nil {
		log.Printf("financials: application fee query failed: %v", err)
		report.Sources["commission"] = "degraded"
	} else {
		for _, fee := range fees {
			day := time.Unix(fee.Created, 0).UTC().Format("2006-01-02")
			amount := float64(fee.Amount) / 100
			revenueByDay[day] += amount
			report.TotalCommission30d += amount
		}
		report.Sources["commission"] = "ok"
	}

	// Gross order volume from the ledger.
	if total, err := s.orders.SumTotalsSince(windowStart); err != nil {
		log.Printf("financials: order volume scan failed: %v", err)
		report.Sources["volume"] = "degraded"
	} else {
		report.TTV30d = total
		report.Sources["volume"] = "ok"
	}

	report.ChartData = make([]ChartPoint, 0, 30)
	for i := 29; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).UTC()
		report.ChartData = append(report.ChartData, ChartPoint{
			Date:       day.Format("02 Jan"),
			Commission: revenueByDay[day.Format("2006-01-02")],
		})
	}

	if s.cache != nil {
		s.cache.StoreReport(report)
	}
	return report, nil
}
