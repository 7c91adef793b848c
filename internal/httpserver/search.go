package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/monashmerchant/shop/internal/service/search"
	"github.com/monashmerchant/shop/internal/util"
	"github.com/monashmerchant/shop/pkg/logging"
)

type SearchHTTP struct {
	Svc *search.Service
}

func (h *SearchHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	if !h.Svc.Enabled() {
		l.Warn("search_products_error", "status", 503, "reason", "search disabled")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search disabled")
	}

	q := c.QueryParam("q")
	if q == "" {
		l.Warn("search_products_error", "status", 400, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, products, err := h.Svc.Search(ctx, q, from, limit)
	if err != nil {
		l.Error("search_products_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	l.Info("search_products_success", "query", q, "total", total)
	return c.JSON(http.StatusOK, map[string]any{
		"total":    total,
		"products": products,
	})
}
