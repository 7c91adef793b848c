package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/transport"
)

func TestListCodes(t *testing.T) {
	env := newTestEnv(t)
	env.addCode(models.PromoCode{Code: "SAVE5", Rate: dec("0.05")})
	env.addCode(models.PromoCode{Code: "VIP10", Rate: dec("0.10")})

	rec, c := env.doJSON(http.MethodGet, "/promocodes", nil, "")
	require.NoError(t, env.deps.Promo.ListCodes(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []models.PromoCode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "SAVE5", resp[0].Code)
	assert.Equal(t, "VIP10", resp[1].Code)
}

func TestCreateCode(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"code":        "bulk15",
		"rate":        "0.15",
		"description": "15% off bulk orders",
		"conditions":  map[string]any{"min_order": "100"},
	}
	rec, c := env.doJSON(http.MethodPost, "/promocodes", body, "")
	require.NoError(t, env.deps.Promo.CreateCode(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp transport.PromoCodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.PromoCode)
	assert.Equal(t, "BULK15", resp.PromoCode.Code)
	assert.Equal(t, "100.00", resp.PromoCode.Conditions.MinOrder.StringFixed(2))
}

func TestCreateCode_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.addCode(models.PromoCode{Code: "VIP10", Rate: dec("0.10")})

	// rate outside (0,1]
	body := map[string]any{"code": "BAD", "rate": "1.5"}
	_, c := env.doJSON(http.MethodPost, "/promocodes", body, "")
	err := env.deps.Promo.CreateCode(c)
	requireHTTPError(t, err, http.StatusBadRequest)

	// duplicate, case-insensitive
	body = map[string]any{"code": "vip10", "rate": "0.2"}
	_, c = env.doJSON(http.MethodPost, "/promocodes", body, "")
	err = env.deps.Promo.CreateCode(c)
	requireHTTPError(t, err, http.StatusConflict)
}

func TestUpdateCode(t *testing.T) {
	env := newTestEnv(t)
	env.addCode(models.PromoCode{Code: "VIP10", Rate: dec("0.10"), Description: "old"})

	body := map[string]any{"rate": "0.12", "description": "new words"}
	rec, c := env.doJSON(http.MethodPut, "/promocodes/vip10", body, "")
	c.SetParamNames("code")
	c.SetParamValues("vip10")
	require.NoError(t, env.deps.Promo.UpdateCode(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.PromoCodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.PromoCode)
	assert.Equal(t, "0.12", resp.PromoCode.Rate.String())
	assert.Equal(t, "new words", resp.PromoCode.Description)

	_, c = env.doJSON(http.MethodPut, "/promocodes/NOPE", body, "")
	c.SetParamNames("code")
	c.SetParamValues("NOPE")
	err := env.deps.Promo.UpdateCode(c)
	requireHTTPError(t, err, http.StatusNotFound)
}

func TestDeleteCode(t *testing.T) {
	env := newTestEnv(t)
	env.addCode(models.PromoCode{Code: "VIP10", Rate: dec("0.10")})

	rec, c := env.doJSON(http.MethodDelete, "/promocodes/vip10", nil, "")
	c.SetParamNames("code")
	c.SetParamValues("vip10")
	require.NoError(t, env.deps.Promo.DeleteCode(c))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, env.codes.Count())

	_, c = env.doJSON(http.MethodDelete, "/promocodes/vip10", nil, "")
	c.SetParamNames("code")
	c.SetParamValues("vip10")
	err := env.deps.Promo.DeleteCode(c)
	requireHTTPError(t, err, http.StatusNotFound)
}

func TestDeleteCode_PersistenceFailureStillDeletes(t *testing.T) {
	env := newTestEnv(t)
	env.addCode(models.PromoCode{Code: "VIP10", Rate: dec("0.10")})

	env.st.FailSave = true
	rec, c := env.doJSON(http.MethodDelete, "/promocodes/vip10", nil, "")
	c.SetParamNames("code")
	c.SetParamValues("vip10")
	require.NoError(t, env.deps.Promo.DeleteCode(c))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, env.codes.Count())
}
