package payments

import (
	"encoding/json"
	"time"

	"github.com/tablo-app/tablo/internal/pkg/cache"
)

const (
	reportCacheKey = "financials:report"
	reportCacheTTL = 60 * time.Second
)

// RedisReportCache caches the assembled financial report in Redis. The
// aggregation fans out to the gateway twice, which is too slow to run on
// every dashboard refresh.
type RedisReportCache struct{}

// NewRedisReportCache creates a report cache backed by the shared Redis
// client.
func NewRedisReportCache() *RedisReportCache {
	return &RedisReportCache{}
}

func (c *RedisReportCache) GetReport() (*FinancialReport, bool) {
	raw, err := cache.Get(reportCacheKey)
	if err != nil {
		return nil, false
	}
	var report FinancialReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, false
	}
	return &report, true
}

func (c *RedisReportCache) StoreReport(report *FinancialReport) {
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	// Cache failures only degrade to recomputation; deliberately ignored.
	_ = cache.Set(reportCacheKey, string(raw), reportCacheTTL)
}
