package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/monashmerchant/shop/internal/service/catalog"
	"github.com/monashmerchant/shop/internal/transport"
	"github.com/monashmerchant/shop/internal/util"
	"github.com/monashmerchant/shop/pkg/logging"
)

type CatalogHTTP struct {
	Svc *catalog.Service
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items := h.Svc.List(offset, limit, c.QueryParam("category"), c.QueryParam("subcategory"))

	l.Info("get_products_success", "total", total)
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + limit - 1) / limit,
			"has_prev":    page > 1,
			"has_next":    offset+limit < total,
		},
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id := c.Param("id")
	p, err := h.Svc.Get(id)
	if err != nil {
		l.Warn("get_product_error", "status", 404, "product_id", id)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) LowStockProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.low_stock_products")

	threshold := util.ParseIntDefault(c.QueryParam("threshold"), catalog.DefaultLowStockThreshold)
	items := h.Svc.LowStock(threshold)

	l.Info("low_stock_products_success", "threshold", threshold, "count", len(items))
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) SetPromotionPrice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.set_promotion_price")

	var req transport.SetPromotionPriceRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("set_promotion_price_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	id := c.Param("id")
	p, err := h.Svc.SetPromotionPrice(ctx, id, req.PromotionPrice)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		l.Warn("set_promotion_price_error", "status", 404, "product_id", id)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrValidation):
		l.Warn("set_promotion_price_error", "status", 400, "product_id", id, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	warning, err := persistWarning(err, "promotion price not persisted")
	if err != nil {
		l.Error("set_promotion_price_error", "status", 500, "product_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot set promotion price")
	}
	if warning != "" {
		l.Warn("set_promotion_price_warning", "product_id", id, "warning", warning)
	}

	l.Info("set_promotion_price_success", "product_id", id, "promotion_price", req.PromotionPrice)
	return c.JSON(http.StatusOK, transport.ProductResponse{Product: p, Warning: warning})
}

func (h *CatalogHTTP) ClearPromotionPrice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.clear_promotion_price")

	id := c.Param("id")
	p, err := h.Svc.ClearPromotionPrice(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		l.Warn("clear_promotion_price_error", "status", 404, "product_id", id)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	warning, err := persistWarning(err, "promotion price not persisted")
	if err != nil {
		l.Error("clear_promotion_price_error", "status", 500, "product_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot clear promotion price")
	}
	if warning != "" {
		l.Warn("clear_promotion_price_warning", "product_id", id, "warning", warning)
	}

	l.Info("clear_promotion_price_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.ProductResponse{Product: p, Warning: warning})
}
