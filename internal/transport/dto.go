package transport

import (
	"github.com/shopspring/decimal"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/service/delivery"
)

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type EditCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartItemView struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items    []CartItemView  `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CheckoutRequest drives one full checkout run. StoreIndex is a
// zero-based index into GET /stores and applies to pickup; Address
// applies to delivery. With Confirmed false the run stops after the
// funds check and returns the quote without side effects.
type CheckoutRequest struct {
	Pickup     bool   `json:"pickup"`
	StoreIndex int    `json:"store_index"`
	Address    string `json:"address"`
	PromoCode  string `json:"promo_code"`
	Confirmed  bool   `json:"confirmed"`
}

type QuoteView struct {
	Lines         []models.OrderLine `json:"lines"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	DiscountRate  decimal.Decimal    `json:"discount_rate"`
	DiscountFrom  string             `json:"discount_from,omitempty"`
	Discount      decimal.Decimal    `json:"discount"`
	DeliveryFee   decimal.Decimal    `json:"delivery_fee"`
	Total         decimal.Decimal    `json:"total"`
	PromoCode     string             `json:"promo_code,omitempty"`
	PromoRejected string             `json:"promo_rejected,omitempty"`
	PickupStore   *delivery.Store    `json:"pickup_store,omitempty"`
	Address       string             `json:"address,omitempty"`
}

type CheckoutResponse struct {
	Status  string        `json:"status"`
	Quote   QuoteView     `json:"quote"`
	Order   *models.Order `json:"order,omitempty"`
	Warning string        `json:"warning,omitempty"`
}

type SetOrderStatusRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	Order   *models.Order `json:"order"`
	Warning string        `json:"warning,omitempty"`
}

type RegisterRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type ProfileResponse struct {
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone"`
	Balance         decimal.Decimal `json:"balance"`
	VIP             bool            `json:"vip"`
	VIPExpiresAt    string          `json:"vip_expires_at,omitempty"`
	Monash          bool            `json:"monash"`
	FirstPickupUsed bool            `json:"first_pickup_used"`
	Warning         string          `json:"warning,omitempty"`
}

type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type VIPRequest struct {
	Years int `json:"years"`
}

type SetPromotionPriceRequest struct {
	PromotionPrice decimal.Decimal `json:"promotion_price"`
}

type ProductResponse struct {
	Product *models.Product `json:"product"`
	Warning string          `json:"warning,omitempty"`
}

type CreatePromoCodeRequest struct {
	Code        string            `json:"code"`
	Rate        decimal.Decimal   `json:"rate"`
	Description string            `json:"description"`
	Conditions  models.Conditions `json:"conditions"`
}

type UpdatePromoCodeRequest struct {
	Rate        *decimal.Decimal   `json:"rate"`
	Description *string            `json:"description"`
	Conditions  *models.Conditions `json:"conditions"`
}

type PromoCodeResponse struct {
	PromoCode *models.PromoCode `json:"promo_code"`
	Warning   string            `json:"warning,omitempty"`
}
