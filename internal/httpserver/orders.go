package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/service/orders"
	"github.com/monashmerchant/shop/internal/transport"
	"github.com/monashmerchant/shop/pkg/logging"
)

type OrdersHTTP struct {
	Ledger *orders.Ledger
}

// ListOrders returns the caller's orders; ?all=true drops the filter
// for back-office views.
func (h *OrdersHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list_orders")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("list_orders_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	filter := email
	if c.QueryParam("all") == "true" {
		filter = ""
	}
	return c.JSON(http.StatusOK, h.Ledger.List(filter))
}

func (h *OrdersHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.get_order")

	id := c.Param("id")
	o, ok := h.Ledger.Get(id)
	if !ok {
		l.Warn("get_order_error", "status", 404, "order_id", id)
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrdersHTTP) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.set_status")

	var req transport.SetOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("set_order_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	id := c.Param("id")
	o, err := h.Ledger.SetStatus(ctx, id, models.OrderStatus(req.Status))
	switch {
	case errors.Is(err, orders.ErrValidation):
		l.Warn("set_order_status_error", "status", 400, "order_id", id, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrNotFound):
		l.Warn("set_order_status_error", "status", 404, "order_id", id)
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	warning, err := persistWarning(err, "status change not persisted")
	if err != nil {
		l.Error("set_order_status_error", "status", 500, "order_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update order")
	}
	if warning != "" {
		l.Warn("set_order_status_warning", "order_id", id, "warning", warning)
	}

	l.Info("set_order_status_success", "order_id", id, "order_status", req.Status)
	return c.JSON(http.StatusOK, transport.OrderResponse{Order: o, Warning: warning})
}
