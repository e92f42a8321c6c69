package payments

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tablo-app/tablo/app/repository"
)

// OnboardingService drives the Connect onboarding state machine: account
// creation, link issuance and the synchronous payments-enabled check.
type OnboardingService struct {
	restaurants repository.RestaurantRepository
	gateway     Gateway
	appURL      string
}

// NewOnboardingService creates the Connect onboarding service.
func NewOnboardingService(restaurants repository.RestaurantRepository, gateway Gateway, appURL string) *OnboardingService {
	return &OnboardingService{
		restaurants: restaurants,
		gateway:     gateway,
		appURL:      appURL,
	}
}

// EnsureOnboarded returns the URL the restaurant owner should be sent to:
// a fresh onboarding link while details are outstanding, a dashboard login
// link once the account has submitted them. The connected-account id is
// persisted immediately after creation so a crash cannot orphan the
// account on the gateway side.
func (s *OnboardingService) EnsureOnboarded(restaurantID, email string) (string, error) {
	if restaurantID == "" {
		return "", badRequest("Missing restaurantId")
	}

	restaurant, err := s.restaurants.GetByID(restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", notFound("Restaurant not found")
		}
		return "", err
	}

	accountID := restaurant.StripeConnectID
	if accountID == "" {
		account, err := s.gateway.CreateConnectAccount(email, restaurantID)
		if err != nil {
			return "", err
		}
		accountID = account.ID
		if err := s.restaurants.SetConnectID(restaurantID, accountID); err != nil {
			return "", err
		}
	}

	account, err := s.gateway.GetConnectAccount(accountID)
	if err != nil {
		return "", err
	}

	// Re-onboarding a completed account is wrong and confuses owners, so a
	// submitted account gets dashboard access instead.
	if account.DetailsSubmitted {
		loginLink, err := s.gateway.CreateLoginLink(accountID)
		if err != nil {
			return "", err
		}
		return loginLink.URL, nil
	}

	accountLink, err := s.gateway.CreateOnboardingLink(
		accountID,
		fmt.Sprintf("%s/admin/settings?connect=refresh", s.appURL),
		fmt.Sprintf("%s/admin/settings?connect=success", s.appURL),
	)
	if err != nil {
		return "", err
	}
	return accountLink.URL, nil
}

// CheckStatus queries the live account state and, when the gateway reports
// the account fully able to charge, enables payments locally. The flag is
// monotonic: a degraded account never flips it back.
func (s *OnboardingService) CheckStatus(restaurantID string) (*ConnectStatus, error) {
	if restaurantID == "" {
		return nil, badRequest("Missing restaurantId")
	}

	restaurant, err := s.restaurants.GetByID(restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Restaurant or Stripe ID not found")
		}
		return nil, err
	}
	if restaurant.StripeConnectID == "" {
		return nil, notFound("Restaurant or Stripe ID not found")
	}

	account, err := s.gateway.GetConnectAccount(restaurant.StripeConnectID)
	if err != nil {
		return nil, err
	}

	status := &ConnectStatus{
		AccountID:        account.ID,
		ChargesEnabled:   account.ChargesEnabled,
		DetailsSubmitted: account.DetailsSubmitted,
		IsReady:          account.ChargesEnabled && account.DetailsSubmitted,
	}
	if status.IsReady {
		if err := s.restaurants.EnablePayments(restaurantID); err != nil {
			return nil, err
		}
	}
	return status, nil
}
