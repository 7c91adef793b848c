package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/service/promo"
	"github.com/monashmerchant/shop/internal/store"
	"github.com/monashmerchant/shop/internal/transport"
	"github.com/monashmerchant/shop/pkg/logging"
)

type PromoHTTP struct {
	Engine *promo.Engine
}

func (h *PromoHTTP) ListCodes(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Engine.List())
}

func (h *PromoHTTP) CreateCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "promo.create_code")

	var req transport.CreatePromoCodeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_promo_code_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pc, err := h.Engine.Create(ctx, models.PromoCode{
		Code:        req.Code,
		Rate:        req.Rate,
		Description: req.Description,
		Conditions:  req.Conditions,
	})
	switch {
	case errors.Is(err, promo.ErrValidation):
		l.Warn("create_promo_code_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, promo.ErrConflict):
		l.Warn("create_promo_code_error", "status", 409, "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	warning, err := persistWarning(err, "promo code not persisted")
	if err != nil {
		l.Error("create_promo_code_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create promo code")
	}
	if warning != "" {
		l.Warn("create_promo_code_warning", "code", pc.Code, "warning", warning)
	}

	l.Info("create_promo_code_success", "code", pc.Code)
	return c.JSON(http.StatusCreated, transport.PromoCodeResponse{PromoCode: pc, Warning: warning})
}

func (h *PromoHTTP) UpdateCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "promo.update_code")

	var req transport.UpdatePromoCodeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_promo_code_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	code := c.Param("code")
	pc, err := h.Engine.Update(ctx, code, req.Rate, req.Description, req.Conditions)
	switch {
	case errors.Is(err, promo.ErrNotFound):
		l.Warn("update_promo_code_error", "status", 404, "code", code)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, promo.ErrValidation):
		l.Warn("update_promo_code_error", "status", 400, "code", code, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	warning, err := persistWarning(err, "promo code not persisted")
	if err != nil {
		l.Error("update_promo_code_error", "status", 500, "code", code, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update promo code")
	}
	if warning != "" {
		l.Warn("update_promo_code_warning", "code", pc.Code, "warning", warning)
	}

	l.Info("update_promo_code_success", "code", pc.Code)
	return c.JSON(http.StatusOK, transport.PromoCodeResponse{PromoCode: pc, Warning: warning})
}

func (h *PromoHTTP) DeleteCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "promo.delete_code")

	code := c.Param("code")
	err := h.Engine.Delete(ctx, code)
	switch {
	case errors.Is(err, promo.ErrNotFound):
		l.Warn("delete_promo_code_error", "status", 404, "code", code)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrPersistence):
		// removed from memory; the flush will catch up on the next write
		l.Warn("delete_promo_code_warning", "code", code, "error", err)
	case err != nil:
		l.Error("delete_promo_code_error", "status", 500, "code", code, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete promo code")
	}

	l.Info("delete_promo_code_success", "code", code)
	return c.NoContent(http.StatusNoContent)
}
