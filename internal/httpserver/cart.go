package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/monashmerchant/shop/internal/cart"
	"github.com/monashmerchant/shop/internal/repo"
	"github.com/monashmerchant/shop/internal/service/pricing"
	"github.com/monashmerchant/shop/internal/transport"
	"github.com/monashmerchant/shop/pkg/logging"
)

var errUnknownUser = errors.New("user not registered")

type CartHTTP struct {
	Carts    *cart.Sessions
	Products *repo.ProductRepo
	Users    *repo.UserRepo
}

// view prices the cart for display. Totals here are indicative;
// checkout recomputes everything against live stock and balance.
func (h *CartHTTP) view(email string) (*transport.CartResponse, error) {
	user, ok := h.Users.Get(email)
	if !ok {
		return nil, errUnknownUser
	}

	lines, subtotal, err := pricing.Itemize(h.Carts.Cart(email).Lines(), h.Products.Get, user.IsVIP(time.Now()))
	if err != nil {
		return nil, err
	}

	items := make([]transport.CartItemView, 0, len(lines))
	for _, ln := range lines {
		items = append(items, transport.CartItemView{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			Quantity:  ln.Quantity,
			UnitPrice: ln.UnitPrice,
			Subtotal:  ln.Subtotal,
		})
	}
	return &transport.CartResponse{Items: items, Subtotal: subtotal}, nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("get_cart_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	resp, err := h.view(email)
	if err != nil {
		return h.viewError(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("add_cart_item_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_cart_item_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, ok := h.Products.Get(req.ProductID)
	if !ok {
		l.Warn("add_cart_item_error", "status", 404, "reason", "product not found", "product_id", req.ProductID)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	if err := h.Carts.Cart(email).Add(p.ID, req.Quantity, p.Quantity); err != nil {
		status := cartErrStatus(err)
		l.Warn("add_cart_item_error", "status", status, "product_id", p.ID, "error", err)
		return echo.NewHTTPError(status, err.Error())
	}

	resp, err := h.view(email)
	if err != nil {
		return h.viewError(l, "add_cart_item_error", err)
	}

	l.Info("add_cart_item_success", "product_id", p.ID, "quantity", req.Quantity)
	return c.JSON(http.StatusCreated, resp)
}

func (h *CartHTTP) EditItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.edit_item")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("edit_cart_item_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req transport.EditCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("edit_cart_item_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	id := c.Param("id")
	stock := 0
	if p, ok := h.Products.Get(id); ok {
		stock = p.Quantity
	} else if req.Quantity > 0 {
		l.Warn("edit_cart_item_error", "status", 404, "reason", "product not found", "product_id", id)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	if err := h.Carts.Cart(email).Edit(id, req.Quantity, stock); err != nil {
		status := cartErrStatus(err)
		l.Warn("edit_cart_item_error", "status", status, "product_id", id, "error", err)
		return echo.NewHTTPError(status, err.Error())
	}

	resp, err := h.view(email)
	if err != nil {
		return h.viewError(l, "edit_cart_item_error", err)
	}

	l.Info("edit_cart_item_success", "product_id", id, "quantity", req.Quantity)
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("remove_cart_item_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	id := c.Param("id")
	if err := h.Carts.Cart(email).Remove(id); err != nil {
		l.Warn("remove_cart_item_error", "status", 404, "product_id", id, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	resp, err := h.view(email)
	if err != nil {
		return h.viewError(l, "remove_cart_item_error", err)
	}

	l.Info("remove_cart_item_success", "product_id", id)
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear_cart")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("clear_cart_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	h.Carts.Cart(email).Clear()

	resp, err := h.view(email)
	if err != nil {
		return h.viewError(l, "clear_cart_error", err)
	}

	l.Info("clear_cart_success")
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHTTP) viewError(l *slog.Logger, event string, err error) error {
	if errors.Is(err, errUnknownUser) || errors.Is(err, pricing.ErrUnknownProduct) {
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	l.Error(event, "status", 500, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "cannot price cart")
}

func cartErrStatus(err error) int {
	switch {
	case errors.Is(err, cart.ErrCapacity):
		return http.StatusConflict
	case errors.Is(err, cart.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrQuantityRange),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrOutOfStock):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
