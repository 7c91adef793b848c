package delivery

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidSelection = errors.New("invalid store selection")

var (
	deliveryFee        = decimal.NewFromInt(20)
	pickupDiscountRate = decimal.RequireFromString("0.05")
)

// Store is a pickup location. The directory is static configuration,
// not persisted data.
type Store struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Hours   string `json:"hours"`
}

var stores = []Store{
	{
		Name:    "Monash Caulfield",
		Address: "900 Dandenong Rd, Caulfield East VIC 3145",
		Phone:   "03 9903 1000",
		Hours:   "Mon-Fri 9:00-18:00",
	},
	{
		Name:    "Monash Clayton",
		Address: "21 Chancellors Walk, Clayton VIC 3800",
		Phone:   "03 9905 4000",
		Hours:   "Mon-Fri 8:30-19:00",
	},
	{
		Name:    "Melbourne CBD",
		Address: "285 Bourke St, Melbourne VIC 3000",
		Phone:   "03 9600 2200",
		Hours:   "Mon-Sun 9:00-21:00",
	},
}

func Stores() []Store {
	out := make([]Store, len(stores))
	copy(out, stores)
	return out
}

// StoreAt resolves a zero-based pickup store index.
func StoreAt(i int) (Store, error) {
	if i < 0 || i >= len(stores) {
		return Store{}, ErrInvalidSelection
	}
	return stores[i], nil
}

// Fee is the flat delivery charge. Pickup is always free; Monash
// users get free delivery.
func Fee(isPickup, isMonash bool) decimal.Decimal {
	if isPickup || isMonash {
		return decimal.Zero
	}
	return deliveryFee
}

// PickupDiscount applies only to Monash pickup orders that earned no
// promotion discount. A granted promotion suppresses it entirely, so
// this must run after promotion validation.
func PickupDiscount(isPickup, isMonash bool, promoRate decimal.Decimal) decimal.Decimal {
	if isPickup && isMonash && promoRate.IsZero() {
		return pickupDiscountRate
	}
	return decimal.Zero
}
