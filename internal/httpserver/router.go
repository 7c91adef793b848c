// Package httpserver wires the shop services to their HTTP routes.
package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/monashmerchant/shop/internal/store"
)

// HeaderUserEmail identifies the acting user. There are no sessions
// or credentials; the header stands in for an authenticated identity.
const HeaderUserEmail = "X-User-Email"

var errNoCaller = errors.New("missing " + HeaderUserEmail + " header")

type Deps struct {
	Store    store.Store
	Cart     *CartHTTP
	Checkout *CheckoutHTTP
	Orders   *OrdersHTTP
	Account  *AccountHTTP
	Catalog  *CatalogHTTP
	Promo    *PromoHTTP
	Search   *SearchHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	products := e.Group("/products")
	products.GET("", d.Catalog.GetProducts)
	products.GET("/search", d.Search.SearchProducts)
	products.GET("/low-stock", d.Catalog.LowStockProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.PUT("/:id/promotion", d.Catalog.SetPromotionPrice)
	products.DELETE("/:id/promotion", d.Catalog.ClearPromotionPrice)

	promos := e.Group("/promocodes")
	promos.GET("", d.Promo.ListCodes)
	promos.POST("", d.Promo.CreateCode)
	promos.PUT("/:code", d.Promo.UpdateCode)
	promos.DELETE("/:code", d.Promo.DeleteCode)

	e.GET("/stores", d.Checkout.Stores)

	crt := e.Group("/cart")
	crt.GET("", d.Cart.GetCart)
	crt.POST("/items", d.Cart.AddItem)
	crt.PATCH("/items/:id", d.Cart.EditItem)
	crt.DELETE("/items/:id", d.Cart.RemoveItem)
	crt.DELETE("", d.Cart.ClearCart)

	e.POST("/checkout", d.Checkout.Checkout)

	ord := e.Group("/orders")
	ord.GET("", d.Orders.ListOrders)
	ord.GET("/:id", d.Orders.GetOrder)
	ord.PATCH("/:id/status", d.Orders.SetStatus)

	acc := e.Group("/account")
	acc.POST("/register", d.Account.Register)
	acc.GET("", d.Account.Profile)
	acc.PUT("", d.Account.UpdateProfile)
	acc.POST("/topup", d.Account.TopUp)
	acc.POST("/vip", d.Account.SubscribeVIP)
	acc.DELETE("/vip", d.Account.CancelVIP)
	acc.GET("/membership", d.Account.Membership)
}

func (d *Deps) ready(c echo.Context) error {
	if err := d.Store.Ping(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	return c.NoContent(http.StatusOK)
}

func callerEmail(c echo.Context) (string, error) {
	email := strings.TrimSpace(c.Request().Header.Get(HeaderUserEmail))
	if email == "" {
		return "", errNoCaller
	}
	return strings.ToLower(email), nil
}

// persistWarning splits a service error into the kept-in-memory
// warning case and a real failure.
func persistWarning(err error, note string) (string, error) {
	if err == nil {
		return "", nil
	}
	if errors.Is(err, store.ErrPersistence) {
		return note, nil
	}
	return "", err
}
