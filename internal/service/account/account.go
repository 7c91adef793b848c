// Package account manages user registration, balance and VIP
// membership.
package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monashmerchant/shop/internal/events"
	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/repo"
	"github.com/monashmerchant/shop/pkg/logging"
)

var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("user not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Account limits and prices.
var (
	initialCredit      = decimal.NewFromInt(1000)
	maxTopUp           = decimal.NewFromInt(1000)
	vipYearPrice       = decimal.NewFromInt(20)
	vipYearPriceMonash = decimal.NewFromInt(18)
)

const (
	minVIPYears = 1
	maxVIPYears = 5
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Service struct {
	Users    *repo.UserRepo
	Producer *events.Producer
}

// VIPCost is the subscription price for the given term. Monash users
// get the discounted yearly rate.
func VIPCost(isMonash bool, years int) decimal.Decimal {
	price := vipYearPrice
	if isMonash {
		price = vipYearPriceMonash
	}
	return price.Mul(decimal.NewFromInt(int64(years)))
}

// Register creates an account with the starting store credit. An error
// wrapping store.ErrPersistence means the account exists in memory but
// the write failed; callers surface that as a warning.
func (s *Service) Register(ctx context.Context, email, name, address, phone string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: malformed email", ErrValidation)
	}
	if _, ok := s.Users.Get(email); ok {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	u := models.User{
		Email:   email,
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
		Phone:   strings.TrimSpace(phone),
		Balance: initialCredit,
	}
	u.AddEvent(time.Now(), models.EventRegistered, "$"+initialCredit.StringFixed(2)+" starting credit")

	err := s.Users.Put(ctx, u)
	created, _ := s.Users.Get(email)
	return &created, err
}

func (s *Service) Profile(email string) (models.User, error) {
	u, ok := s.Users.Get(email)
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

// UpdateProfile replaces the fields whose pointers are set to a
// non-empty value; everything else keeps its current value.
func (s *Service) UpdateProfile(ctx context.Context, email string, name, address, phone *string) (*models.User, error) {
	if _, ok := s.Users.Get(email); !ok {
		return nil, ErrNotFound
	}

	err := s.Users.Update(ctx, email, func(u *models.User) {
		if name != nil && strings.TrimSpace(*name) != "" {
			u.Name = strings.TrimSpace(*name)
		}
		if address != nil && strings.TrimSpace(*address) != "" {
			u.Address = strings.TrimSpace(*address)
		}
		if phone != nil && strings.TrimSpace(*phone) != "" {
			u.Phone = strings.TrimSpace(*phone)
		}
	})
	updated, _ := s.Users.Get(email)
	return &updated, err
}

func (s *Service) TopUp(ctx context.Context, email string, amount decimal.Decimal) (*models.User, error) {
	if !amount.IsPositive() || amount.GreaterThan(maxTopUp) {
		return nil, fmt.Errorf("%w: amount must be above $0 and at most $%s", ErrValidation, maxTopUp.StringFixed(2))
	}
	if _, ok := s.Users.Get(email); !ok {
		return nil, ErrNotFound
	}

	now := time.Now()
	err := s.Users.Update(ctx, email, func(u *models.User) {
		u.Balance = u.Balance.Add(amount)
		u.AddEvent(now, models.EventToppedUp, "+$"+amount.StringFixed(2))
	})

	updated, _ := s.Users.Get(email)
	s.publish(ctx, events.TypeBalanceToppedUp, updated.Email, map[string]any{
		"email":   updated.Email,
		"amount":  amount,
		"balance": updated.Balance,
	})
	return &updated, err
}

// SubscribeVIP charges the term price up front and extends an active
// subscription rather than restarting it.
func (s *Service) SubscribeVIP(ctx context.Context, email string, years int) (*models.User, error) {
	if years < minVIPYears || years > maxVIPYears {
		return nil, fmt.Errorf("%w: years must be between %d and %d", ErrValidation, minVIPYears, maxVIPYears)
	}
	u, ok := s.Users.Get(email)
	if !ok {
		return nil, ErrNotFound
	}

	now := time.Now()
	cost := VIPCost(u.IsMonash(), years)
	if u.Balance.LessThan(cost) {
		return nil, fmt.Errorf("%w: balance $%s, subscription costs $%s",
			ErrInsufficientFunds, u.Balance.StringFixed(2), cost.StringFixed(2))
	}

	err := s.Users.Update(ctx, email, func(u *models.User) {
		u.Balance = u.Balance.Sub(cost)
		from := now
		if u.VIP && u.VIPExpiresAt.After(now) {
			from = u.VIPExpiresAt
		}
		u.VIP = true
		u.VIPExpiresAt = from.AddDate(years, 0, 0)
		u.AddEvent(now, models.EventVIPSubscribed, fmt.Sprintf("%d year(s) for $%s", years, cost.StringFixed(2)))
	})

	updated, _ := s.Users.Get(email)
	s.publish(ctx, events.TypeVIPSubscribed, updated.Email, map[string]any{
		"email":      updated.Email,
		"years":      years,
		"expires_at": updated.VIPExpiresAt.Format(models.TimeLayout),
	})
	return &updated, err
}

// CancelVIP drops the membership immediately. There is no refund for
// the remaining term.
func (s *Service) CancelVIP(ctx context.Context, email string) (*models.User, error) {
	u, ok := s.Users.Get(email)
	if !ok {
		return nil, ErrNotFound
	}
	now := time.Now()
	if !u.IsVIP(now) {
		return nil, fmt.Errorf("%w: not currently a VIP member", ErrValidation)
	}

	err := s.Users.Update(ctx, email, func(u *models.User) {
		u.VIP = false
		u.VIPExpiresAt = time.Time{}
		u.AddEvent(now, models.EventVIPCancelled, "no refund")
	})

	updated, _ := s.Users.Get(email)
	s.publish(ctx, events.TypeVIPCancelled, updated.Email, map[string]any{"email": updated.Email})
	return &updated, err
}

// Membership returns the account history, oldest first.
func (s *Service) Membership(email string) ([]models.MembershipEvent, error) {
	u, ok := s.Users.Get(email)
	if !ok {
		return nil, ErrNotFound
	}
	return u.Membership, nil
}

func (s *Service) publish(ctx context.Context, eventType, key string, payload any) {
	if err := s.Producer.Publish(ctx, eventType, key, payload); err != nil {
		logging.FromContext(ctx).Warn("event_publish_error", "type", eventType, "error", err)
	}
}
