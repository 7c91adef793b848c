package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the layout of every persisted timestamp string.
const TimeLayout = "2006-01-02 15:04:05"

const CategoryFood = "food"

// Perishable carries the attribute group required for food products.
type Perishable struct {
	ExpiryLabel string   `json:"expiry_label"`
	Ingredients []string `json:"ingredients"`
	Storage     string   `json:"storage"`
	Allergens   []string `json:"allergens,omitempty"`
}

type Product struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Brand          string           `json:"brand"`
	Category       string           `json:"category"`
	Subcategory    string           `json:"subcategory"`
	Price          decimal.Decimal  `json:"price"`
	MemberPrice    decimal.Decimal  `json:"member_price"`
	Quantity       int              `json:"quantity"`
	PromotionPrice *decimal.Decimal `json:"promotion_price,omitempty"`
	Perishable     *Perishable      `json:"perishable,omitempty"`
}

// Kind reports the product variant: "food" when the perishable
// attribute group is present, "general" otherwise.
func (p *Product) Kind() string {
	if p.Perishable != nil {
		return "food"
	}
	return "general"
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product id required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price must be >= 0")
	}
	if p.MemberPrice.IsNegative() {
		return fmt.Errorf("member price must be >= 0")
	}
	if p.MemberPrice.GreaterThan(p.Price) {
		return fmt.Errorf("member price must not exceed regular price")
	}
	if p.Quantity < 0 {
		return fmt.Errorf("stock quantity must be >= 0")
	}
	if p.PromotionPrice != nil {
		if !p.PromotionPrice.IsPositive() || !p.PromotionPrice.LessThan(p.Price) {
			return fmt.Errorf("promotion price must be positive and below regular price")
		}
	}
	if strings.EqualFold(p.Category, CategoryFood) && p.Perishable == nil {
		return fmt.Errorf("food products require perishable attributes")
	}
	return nil
}

// MembershipEvent is one entry of a user's append-only account history.
type MembershipEvent struct {
	At    string `json:"at"`
	Event string `json:"event"`
	Note  string `json:"note,omitempty"`
}

const (
	EventRegistered      = "registered"
	EventToppedUp        = "topped_up"
	EventVIPSubscribed   = "vip_subscribed"
	EventVIPCancelled    = "vip_cancelled"
	EventFirstPickupUsed = "first_pickup_used"
)

type User struct {
	Email           string            `json:"email"`
	Name            string            `json:"name"`
	Address         string            `json:"address"`
	Phone           string            `json:"phone"`
	Balance         decimal.Decimal   `json:"balance"`
	VIP             bool              `json:"vip"`
	VIPExpiresAt    time.Time         `json:"vip_expires_at"`
	FirstPickupUsed bool              `json:"first_pickup_used"`
	Membership      []MembershipEvent `json:"membership,omitempty"`
}

// IsMonash derives the Monash flag from the email domain.
func (u *User) IsMonash() bool {
	e := strings.ToLower(strings.TrimSpace(u.Email))
	return strings.HasSuffix(e, "@student.monash.edu") || strings.HasSuffix(e, "@monash.edu")
}

// IsVIP reports active membership; an expired subscription does not count.
func (u *User) IsVIP(now time.Time) bool {
	return u.VIP && now.Before(u.VIPExpiresAt)
}

func (u *User) AddEvent(now time.Time, event, note string) {
	u.Membership = append(u.Membership, MembershipEvent{
		At:    now.Format(TimeLayout),
		Event: event,
		Note:  note,
	})
}

// Conditions declares which checks a promotion code enforces. A zero
// MinOrder means no minimum spend.
type Conditions struct {
	FirstTimePickup bool            `json:"first_time_pickup,omitempty"`
	PickupOnly      bool            `json:"pickup_only,omitempty"`
	DeliveryOnly    bool            `json:"delivery_only,omitempty"`
	VIPOnly         bool            `json:"vip_only,omitempty"`
	MonashOnly      bool            `json:"monash_only,omitempty"`
	MinOrder        decimal.Decimal `json:"min_order"`
}

type PromoCode struct {
	Code        string          `json:"code"`
	Rate        decimal.Decimal `json:"rate"`
	Description string          `json:"description"`
	Conditions  Conditions      `json:"conditions"`
}

func (p *PromoCode) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("code required")
	}
	one := decimal.NewFromInt(1)
	if !p.Rate.IsPositive() || p.Rate.GreaterThan(one) {
		return fmt.Errorf("rate must be in (0,1]")
	}
	if p.Conditions.MinOrder.IsNegative() {
		return fmt.Errorf("min order must be >= 0")
	}
	return nil
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderLine is a line-item snapshot taken at commit time; later catalog
// changes never touch it.
type OrderLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Order is immutable once committed except for its status.
type Order struct {
	ID        string          `json:"order_id"`
	UserEmail string          `json:"user_email"`
	Lines     []OrderLine     `json:"product_list"`
	Total     decimal.Decimal `json:"total_price"`
	Status    OrderStatus     `json:"status"`
	CreatedAt string          `json:"created_at"`
}
