package app_test

import (
	"net/http"
	"testing"

	"github.com/fekuna/omnipos-pricing-service/internal/testutil"
	"github.com/fekuna/omnipos-pricing-service/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response data should be an object: %v", body)
	return d
}

func list(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()
	d, ok := body["data"].([]interface{})
	require.True(t, ok, "response data should be a list: %v", body)
	return d
}

func TestPurchaseDayFlow(t *testing.T) {
	env := testutil.NewTestEnv(t)
	r := env.Router
	testutil.SeedSupplier(t, env.DB, "sup-1", "Don Pepe", true)
	testutil.SeedVariant(t, env.DB, "tomato", "Tomato", unit.Config{SaleUnit: unit.Weight, PurchaseUnit: unit.Box})

	// writes need an actor
	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/sessions", map[string]string{"date_key": "2026-03-10"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/sessions", map[string]string{"date_key": "2026-03-10"}, "owner")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sessionID := data(t, testutil.ParseResponse(w))["id"].(string)
	base := "/api/v1/sessions/" + sessionID

	w = testutil.DoRequest(r, http.MethodPost, base+"/items", map[string]interface{}{"variant_id": "tomato", "planned_quantity": "3"}, "owner")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemID := data(t, testutil.ParseResponse(w))["id"].(string)

	w = testutil.DoRequest(r, http.MethodPost, base+"/open", nil, "owner")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// reservation race
	w = testutil.DoRequest(r, http.MethodPost, base+"/items/"+itemID+"/reserve", map[string]int{"minutes": 15}, "ana")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = testutil.DoRequest(r, http.MethodPost, base+"/items/"+itemID+"/reserve", map[string]int{"minutes": 15}, "beto")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, float64(40900), testutil.ParseResponse(w)["code"])

	// buy two boxes
	w = testutil.DoRequest(r, http.MethodPost, base+"/items/"+itemID+"/confirm", map[string]string{
		"supplier_id": "sup-1", "quantity": "2", "unit_cost": "6000",
	}, "ana")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	confirmed := data(t, testutil.ParseResponse(w))
	lots := confirmed["lots"].([]interface{})
	require.Len(t, lots, 2)
	assert.Equal(t, "PARTIAL", confirmed["daily_price"].(map[string]interface{})["status"])

	lotID := lots[0].(map[string]interface{})["id"].(string)
	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/lots/"+lotID+"/weigh", map[string]string{"net_weight": "20"}, "ana")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// public board hides the cost basis
	w = testutil.DoRequest(r, http.MethodGet, base+"/prices", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	board := list(t, testutil.ParseResponse(w))
	require.Len(t, board, 1)
	row := board[0].(map[string]interface{})
	assert.Equal(t, "450", row["sale_price"])
	assert.Nil(t, row["normalized_cost"])
	assert.Equal(t, "NEW", row["movement"])

	w = testutil.DoRequest(r, http.MethodGet, base+"/prices?include_costs=true", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	row = list(t, testutil.ParseResponse(w))[0].(map[string]interface{})
	assert.Equal(t, "300", row["normalized_cost"])

	// owner override
	w = testutil.DoRequest(r, http.MethodPut, base+"/prices/tomato/manual", map[string]string{"price": "999", "note": "promo"}, "owner")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "MANUAL", data(t, testutil.ParseResponse(w))["pricing_mode"])

	w = testutil.DoRequest(r, http.MethodPost, base+"/close", nil, "owner")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CLOSED", data(t, testutil.ParseResponse(w))["status"])

	w = testutil.DoRequest(r, http.MethodGet, base+"/prices/tomato", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "999", data(t, testutil.ParseResponse(w))["sale_price"])

	w = testutil.DoRequest(r, http.MethodPut, base+"/prices/tomato/manual", map[string]string{"price": "1200"}, "owner")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoRequest(r, http.MethodGet, base+"/prices/export", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
}

func TestHandlers_ErrorMapping(t *testing.T) {
	env := testutil.NewTestEnv(t)
	r := env.Router

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/sessions/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, float64(40400), testutil.ParseResponse(w)["code"])

	w = testutil.DoRequest(r, http.MethodPost, "/api/v1/sessions", map[string]string{"date_key": "tomorrow"}, "owner")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/settings/pricing", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	settings := data(t, testutil.ParseResponse(w))
	assert.Equal(t, "0.35", settings["margin_pct"])
	assert.Equal(t, "50", settings["round_step"])

	w = testutil.DoRequest(r, http.MethodPut, "/api/v1/settings/pricing/margin", map[string]string{"value": "300"}, "owner")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
