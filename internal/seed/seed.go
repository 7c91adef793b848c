// Package seed installs the default promotion codes and optional demo
// data for local runs.
package seed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/repo"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// PromoCodes installs the default codes when the collection is empty.
// Existing codes, default or edited, are left alone.
func PromoCodes(ctx context.Context, codes *repo.PromoRepo) error {
	if codes.Count() > 0 {
		return nil
	}

	defaults := []models.PromoCode{
		{
			Code:        "NEWMONASH20",
			Rate:        dec("0.20"),
			Description: "20% off your first pickup order",
			Conditions:  models.Conditions{FirstTimePickup: true, PickupOnly: true},
		},
		{
			Code:        "VIP10",
			Rate:        dec("0.10"),
			Description: "10% off for VIP members",
			Conditions:  models.Conditions{VIPOnly: true, MinOrder: dec("50")},
		},
		{
			Code:        "MONASH15",
			Rate:        dec("0.15"),
			Description: "15% off delivery for Monash students",
			Conditions:  models.Conditions{MonashOnly: true, DeliveryOnly: true, MinOrder: dec("30")},
		},
	}

	for _, pc := range defaults {
		if err := codes.Put(ctx, pc); err != nil {
			return err
		}
	}
	return nil
}

// Demo fills empty product and user collections with sample data.
// Collections that already hold records are not touched.
func Demo(ctx context.Context, products *repo.ProductRepo, users *repo.UserRepo) error {
	if products.Count() == 0 {
		for _, p := range demoProducts() {
			if err := products.Put(ctx, p); err != nil {
				return err
			}
		}
	}

	if users.Count() == 0 {
		for _, u := range demoUsers() {
			if err := users.Put(ctx, u); err != nil {
				return err
			}
		}
	}
	return nil
}

func demoProducts() []models.Product {
	return []models.Product{
		{
			ID: "P001", Name: "Full Cream Milk 2L", Brand: "Devondale",
			Category: "food", Subcategory: "dairy",
			Price: dec("6.50"), MemberPrice: dec("5.85"), Quantity: 40,
			Perishable: &models.Perishable{
				ExpiryLabel: "Use by 7 days after opening",
				Ingredients: []string{"whole milk"},
				Storage:     "Keep refrigerated below 4C",
				Allergens:   []string{"milk"},
			},
		},
		{
			ID: "P002", Name: "Wholemeal Bread 700g", Brand: "Helga's",
			Category: "food", Subcategory: "bakery",
			Price: dec("4.80"), MemberPrice: dec("4.30"), Quantity: 25,
			Perishable: &models.Perishable{
				ExpiryLabel: "Best before 5 days from purchase",
				Ingredients: []string{"wholemeal flour", "water", "yeast", "salt"},
				Storage:     "Store in a cool dry place",
				Allergens:   []string{"gluten"},
			},
		},
		{
			ID: "P003", Name: "Free Range Eggs 12pk", Brand: "Farm Pride",
			Category: "food", Subcategory: "eggs",
			Price: dec("7.20"), MemberPrice: dec("6.50"), Quantity: 30,
			Perishable: &models.Perishable{
				ExpiryLabel: "Best before 4 weeks from pack date",
				Ingredients: []string{"eggs"},
				Storage:     "Keep refrigerated",
				Allergens:   []string{"egg"},
			},
		},
		{
			ID: "P004", Name: "Jasmine Rice 5kg", Brand: "SunRice",
			Category: "food", Subcategory: "pantry",
			Price: dec("16.00"), MemberPrice: dec("14.40"), Quantity: 18,
			Perishable: &models.Perishable{
				ExpiryLabel: "Best before 12 months from pack date",
				Ingredients: []string{"jasmine rice"},
				Storage:     "Store in an airtight container",
			},
		},
		{
			ID: "P005", Name: "Instant Coffee 200g", Brand: "Moccona",
			Category: "food", Subcategory: "beverages",
			Price: dec("12.50"), MemberPrice: dec("11.25"), Quantity: 3,
			Perishable: &models.Perishable{
				ExpiryLabel: "Best before 18 months from pack date",
				Ingredients: []string{"coffee beans"},
				Storage:     "Store in a cool dry place",
			},
		},
		{
			ID: "P006", Name: "Laundry Detergent 2L", Brand: "Omo",
			Category: "household", Subcategory: "cleaning",
			Price: dec("12.00"), MemberPrice: dec("10.80"), Quantity: 15,
		},
		{
			ID: "P007", Name: "Paper Towels 6pk", Brand: "Quilton",
			Category: "household", Subcategory: "paper",
			Price: dec("8.50"), MemberPrice: dec("7.70"), Quantity: 50,
		},
		{
			ID: "P008", Name: "A4 Notebook 200pg", Brand: "Spirax",
			Category: "stationery", Subcategory: "paper",
			Price: dec("3.20"), MemberPrice: dec("2.90"), Quantity: 60,
		},
	}
}

func demoUsers() []models.User {
	now := time.Now()

	student := models.User{
		Email:   "alex.tan@student.monash.edu",
		Name:    "Alex Tan",
		Address: "12 Blackburn Rd, Clayton VIC 3168",
		Phone:   "0412 000 111",
		Balance: dec("500"),
	}
	student.AddEvent(now, models.EventRegistered, "demo account")

	staff := models.User{
		Email:        "jordan.lee@monash.edu",
		Name:         "Jordan Lee",
		Address:      "8 College Walk, Clayton VIC 3168",
		Phone:        "0412 000 222",
		Balance:      dec("300"),
		VIP:          true,
		VIPExpiresAt: now.AddDate(1, 0, 0),
	}
	staff.AddEvent(now, models.EventRegistered, "demo account")
	staff.AddEvent(now, models.EventVIPSubscribed, "1 year(s) for $18.00")

	shopper := models.User{
		Email:   "casey.morgan@gmail.com",
		Name:    "Casey Morgan",
		Address: "101 Swanston St, Melbourne VIC 3000",
		Phone:   "0412 000 333",
		Balance: dec("150"),
	}
	shopper.AddEvent(now, models.EventRegistered, "demo account")

	return []models.User{student, staff, shopper}
}
