package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monashmerchant/shop/internal/transport"
)

// serve runs a request through the registered routes, echo error
// handling included.
func (env *testEnv) serve(method, path, body, email string) *httptest.ResponseRecorder {
	env.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if email != "" {
		req.Header.Set(HeaderUserEmail, email)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	Register(env.e, env.deps)

	rec := env.serve(http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.serve(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	env.st.FailPing = true
	rec = env.serve(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_ErrorsRenderAsJSON(t *testing.T) {
	env := newTestEnv(t)
	Register(env.e, env.deps)

	rec := env.serve(http.MethodGet, "/cart", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], HeaderUserEmail)
}

func TestRouter_FullPurchaseFlow(t *testing.T) {
	env := newTestEnv(t)
	Register(env.e, env.deps)
	env.addProduct("P001", "Milk", "10.00", "9.00", 10)

	rec := env.serve(http.MethodPost, "/account/register",
		`{"email":"alex.tan@student.monash.edu","name":"Alex Tan"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.serve(http.MethodPost, "/cart/items",
		`{"product_id":"P001","quantity":2}`, studentEmail)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.serve(http.MethodPost, "/checkout",
		`{"pickup":true,"store_index":0,"confirmed":true}`, studentEmail)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp transport.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Order)
	assert.Equal(t, "19.00", resp.Order.Total.StringFixed(2))

	rec = env.serve(http.MethodGet, "/orders/"+resp.Order.ID, "", studentEmail)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.serve(http.MethodGet, "/account", "", studentEmail)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile transport.ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "981.00", profile.Balance.StringFixed(2))
}
