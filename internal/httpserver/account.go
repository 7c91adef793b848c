package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/service/account"
	"github.com/monashmerchant/shop/internal/transport"
	"github.com/monashmerchant/shop/pkg/logging"
)

type AccountHTTP struct {
	Svc *account.Service
}

func profileView(u *models.User, warning string) transport.ProfileResponse {
	resp := transport.ProfileResponse{
		Email:           u.Email,
		Name:            u.Name,
		Address:         u.Address,
		Phone:           u.Phone,
		Balance:         u.Balance,
		VIP:             u.IsVIP(time.Now()),
		Monash:          u.IsMonash(),
		FirstPickupUsed: u.FirstPickupUsed,
		Warning:         warning,
	}
	if u.VIP && !u.VIPExpiresAt.IsZero() {
		resp.VIPExpiresAt = u.VIPExpiresAt.Format(models.TimeLayout)
	}
	return resp
}

func (h *AccountHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.Register(ctx, req.Email, req.Name, req.Address, req.Phone)
	switch {
	case errors.Is(err, account.ErrValidation):
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrConflict):
		l.Warn("register_error", "status", 409, "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	warning, err := persistWarning(err, "account not persisted")
	if err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot register")
	}
	if warning != "" {
		l.Warn("register_warning", "email", u.Email, "warning", warning)
	}

	l.Info("register_success", "email", u.Email)
	return c.JSON(http.StatusCreated, profileView(u, warning))
}

func (h *AccountHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.profile")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("profile_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	u, err := h.Svc.Profile(email)
	if err != nil {
		l.Warn("profile_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, profileView(&u, ""))
}

func (h *AccountHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.update_profile")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("update_profile_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_profile_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.UpdateProfile(ctx, email, req.Name, req.Address, req.Phone)
	if errors.Is(err, account.ErrNotFound) {
		l.Warn("update_profile_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	warning, err := persistWarning(err, "profile change not persisted")
	if err != nil {
		l.Error("update_profile_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update profile")
	}
	if warning != "" {
		l.Warn("update_profile_warning", "email", u.Email, "warning", warning)
	}

	l.Info("update_profile_success", "email", u.Email)
	return c.JSON(http.StatusOK, profileView(u, warning))
}

func (h *AccountHTTP) TopUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.top_up")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("top_up_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req transport.TopUpRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("top_up_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.TopUp(ctx, email, req.Amount)
	switch {
	case errors.Is(err, account.ErrValidation):
		l.Warn("top_up_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrNotFound):
		l.Warn("top_up_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	warning, err := persistWarning(err, "balance change not persisted")
	if err != nil {
		l.Error("top_up_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot top up")
	}
	if warning != "" {
		l.Warn("top_up_warning", "email", u.Email, "warning", warning)
	}

	l.Info("top_up_success", "email", u.Email, "amount", req.Amount)
	return c.JSON(http.StatusOK, profileView(u, warning))
}

func (h *AccountHTTP) SubscribeVIP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.subscribe_vip")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("subscribe_vip_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req transport.VIPRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("subscribe_vip_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.SubscribeVIP(ctx, email, req.Years)
	switch {
	case errors.Is(err, account.ErrValidation):
		l.Warn("subscribe_vip_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrNotFound):
		l.Warn("subscribe_vip_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, account.ErrInsufficientFunds):
		l.Warn("subscribe_vip_error", "status", 402, "error", err)
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
	}

	warning, err := persistWarning(err, "membership change not persisted")
	if err != nil {
		l.Error("subscribe_vip_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot subscribe")
	}
	if warning != "" {
		l.Warn("subscribe_vip_warning", "email", u.Email, "warning", warning)
	}

	l.Info("subscribe_vip_success", "email", u.Email, "years", req.Years)
	return c.JSON(http.StatusOK, profileView(u, warning))
}

func (h *AccountHTTP) CancelVIP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.cancel_vip")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("cancel_vip_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	u, err := h.Svc.CancelVIP(ctx, email)
	switch {
	case errors.Is(err, account.ErrValidation):
		l.Warn("cancel_vip_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, account.ErrNotFound):
		l.Warn("cancel_vip_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	warning, err := persistWarning(err, "membership change not persisted")
	if err != nil {
		l.Error("cancel_vip_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot cancel")
	}
	if warning != "" {
		l.Warn("cancel_vip_warning", "email", u.Email, "warning", warning)
	}

	l.Info("cancel_vip_success", "email", u.Email)
	return c.JSON(http.StatusOK, profileView(u, warning))
}

func (h *AccountHTTP) Membership(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.membership")

	email, err := callerEmail(c)
	if err != nil {
		l.Warn("membership_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	history, err := h.Svc.Membership(email)
	if err != nil {
		l.Warn("membership_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if history == nil {
		history = []models.MembershipEvent{}
	}
	return c.JSON(http.StatusOK, history)
}
