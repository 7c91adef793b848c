package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/monashmerchant/shop/internal/service/checkout"
	"github.com/monashmerchant/shop/internal/service/delivery"
	"github.com/monashmerchant/shop/internal/transport"
	"github.com/monashmerchant/shop/pkg/logging"
)

type CheckoutHTTP struct {
	Svc *checkout.Service
}

// Checkout runs the whole pipeline in one request. Unconfirmed runs
// answer 200 with the quote; confirmed runs answer 201 with the order.
func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.run")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("checkout_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	out, err := h.Svc.Run(ctx, email, req)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrValidation):
			l.Warn("checkout_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, checkout.ErrNotFound):
			l.Warn("checkout_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, checkout.ErrInsufficientFunds):
			l.Warn("checkout_error", "status", 402, "error", err)
			return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
		case errors.Is(err, checkout.ErrState):
			l.Warn("checkout_error", "status", 409, "error", err)
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		l.Error("checkout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "checkout failed")
	}

	resp := transport.CheckoutResponse{
		Status:  out.State.String(),
		Quote:   quoteView(out.Quote),
		Order:   out.Order,
		Warning: out.Warning,
	}

	status := http.StatusOK
	if out.State == checkout.StateConfirmed {
		status = http.StatusCreated
	}
	if out.Warning != "" {
		l.Warn("checkout_warning", "warning", out.Warning)
	}
	l.Info("checkout_success", "state", out.State.String(), "total", out.Quote.Total)
	return c.JSON(status, resp)
}

// Stores lists the pickup locations; store_index in the checkout
// request points into this list.
func (h *CheckoutHTTP) Stores(c echo.Context) error {
	return c.JSON(http.StatusOK, delivery.Stores())
}

func quoteView(q checkout.Quote) transport.QuoteView {
	return transport.QuoteView{
		Lines:         q.Lines,
		Subtotal:      q.Subtotal,
		DiscountRate:  q.DiscountRate,
		DiscountFrom:  q.DiscountFrom,
		Discount:      q.Discount,
		DeliveryFee:   q.Fee,
		Total:         q.Total,
		PromoCode:     q.PromoCode,
		PromoRejected: q.PromoRejected,
		PickupStore:   q.Store,
		Address:       q.Address,
	}
}
