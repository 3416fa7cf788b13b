package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflex/ops-engine/api"
	"github.com/gymflex/ops-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var apiNow = time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := api.NewHandler(memory.New(), 5)
	h.Membership.Now = func() time.Time { return apiNow }
	h.Billing.Now = func() time.Time { return apiNow }
	h.Attendance.Now = func() time.Time { return apiNow }
	h.Sales.Now = func() time.Time { return apiNow }

	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func doList(t *testing.T, srv *httptest.Server, path string) []any {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	return list
}

func createPlan(t *testing.T, srv *httptest.Server, name string, cost float64, days int) string {
	t.Helper()
	resp, body := do(t, srv, http.MethodPost, "/api/memberships", map[string]any{
		"name": name, "cost": cost, "duration_days": days,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["id"].(string)
}

func registerClient(t *testing.T, srv *httptest.Server, first, last string) map[string]any {
	t.Helper()
	resp, body := do(t, srv, http.MethodPost, "/api/clients", map[string]any{
		"first_name": first, "last_name": last,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body
}

// =============================================================================
// CLIENTS
// =============================================================================

func TestRegisterClient(t *testing.T) {
	srv := newServer(t)

	body := registerClient(t, srv, "Ana", "Torres")
	assert.Equal(t, "1001a", body["human_code"])
	assert.Equal(t, "inactive", body["status"])
	assert.Nil(t, body["membership_expiry"])

	second := registerClient(t, srv, "Luis", "Mora")
	assert.Equal(t, "1002a", second["human_code"])
}

func TestRegisterClient_MissingName(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/clients", map[string]any{
		"first_name": "", "last_name": "Torres",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestGetClient_NotFound(t *testing.T) {
	srv := newServer(t)

	resp, _ := do(t, srv, http.MethodGet, "/api/clients/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// RENEWAL
// =============================================================================

func TestRenewClient(t *testing.T) {
	// GIVEN: A registered client and a 30-day plan
	// WHEN: Renewing through the API
	// THEN: The client comes back active with a window ending 30 days out,
	//       and a membership_new transaction is recorded

	srv := newServer(t)
	planID := createPlan(t, srv, "Mensual", 150, 30)
	client := registerClient(t, srv, "Ana", "Torres")

	resp, body := do(t, srv, http.MethodPost,
		fmt.Sprintf("/api/clients/%s/renew", client["id"]),
		map[string]any{"plan_id": planID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	renewed := body["client"].(map[string]any)
	assert.Equal(t, "active", renewed["status"])
	assert.Equal(t, "2025-06-10", renewed["membership_start"])
	assert.Equal(t, "2025-07-10", renewed["membership_expiry"])

	tx := body["transaction"].(map[string]any)
	assert.Equal(t, "membership_new", tx["type"])
	assert.Equal(t, "150.00", tx["amount"])
	assert.Equal(t, "Ana Torres", tx["client_name"])
}

func TestRenewClient_UnknownPlan(t *testing.T) {
	srv := newServer(t)
	client := registerClient(t, srv, "Ana", "Torres")

	resp, _ := do(t, srv, http.MethodPost,
		fmt.Sprintf("/api/clients/%s/renew", client["id"]),
		map[string]any{"plan_id": "no-such-plan"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// INSTALLMENTS
// =============================================================================

func TestInstallmentLifecycle(t *testing.T) {
	srv := newServer(t)
	planID := createPlan(t, srv, "Trimestral", 300, 90)
	client := registerClient(t, srv, "Ana", "Torres")
	clientID := client["id"].(string)

	// open a 3-part plan
	resp, plan := do(t, srv, http.MethodPost,
		fmt.Sprintf("/api/clients/%s/installment-plans", clientID),
		map[string]any{"plan_id": planID, "count": 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	installments := plan["installments"].([]any)
	require.Len(t, installments, 3)
	first := installments[0].(map[string]any)
	assert.Equal(t, "100.00", first["amount"])
	assert.Equal(t, "pending", first["status"])
	assert.Equal(t, false, first["overdue"])

	// the client is still inactive; the agreement grants nothing
	_, current := do(t, srv, http.MethodGet, "/api/clients/"+clientID, nil)
	assert.Equal(t, "inactive", current["status"])

	// settle the first installment
	resp, settlement := do(t, srv, http.MethodPost,
		fmt.Sprintf("/api/installments/%s/pay", first["id"]),
		map[string]any{"payment_method": "cash"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), settlement["paid_count"])
	assert.Equal(t, false, settlement["plan_completed"])

	tx := settlement["transaction"].(map[string]any)
	assert.Equal(t, "Trimestral - Cuota 1/3", tx["item_description"])

	// partial payment activates the client
	_, current = do(t, srv, http.MethodGet, "/api/clients/"+clientID, nil)
	assert.Equal(t, "active", current["status"])

	// settling twice conflicts
	resp, _ = do(t, srv, http.MethodPost,
		fmt.Sprintf("/api/installments/%s/pay", first["id"]),
		map[string]any{"payment_method": "cash"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateInstallmentPlan_RejectsSinglePart(t *testing.T) {
	srv := newServer(t)
	planID := createPlan(t, srv, "Mensual", 150, 30)
	client := registerClient(t, srv, "Ana", "Torres")

	resp, _ := do(t, srv, http.MethodPost,
		fmt.Sprintf("/api/clients/%s/installment-plans", client["id"]),
		map[string]any{"plan_id": planID, "count": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// =============================================================================
// CHECK-IN
// =============================================================================

func TestCheckIn_AlwaysRespondsOK(t *testing.T) {
	// A denial is a business outcome, not a transport error: the kiosk
	// always gets a 200 with the decision in the body.
	srv := newServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/checkin", map[string]any{"code": "9999z"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["granted"])
	assert.Equal(t, "code not found", body["message"])

	logs := doList(t, srv, "/api/attendance")
	require.Len(t, logs, 1)
}

func TestCheckIn_GrantedAfterRenewal(t *testing.T) {
	srv := newServer(t)
	planID := createPlan(t, srv, "Mensual", 150, 30)
	client := registerClient(t, srv, "Ana", "Torres")

	resp, _ := do(t, srv, http.MethodPost,
		fmt.Sprintf("/api/clients/%s/renew", client["id"]),
		map[string]any{"plan_id": planID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/api/checkin",
		map[string]any{"code": client["human_code"]})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["granted"])
	assert.Equal(t, false, body["warning"])
}

// =============================================================================
// POINT OF SALE
// =============================================================================

func TestSellProduct(t *testing.T) {
	srv := newServer(t)

	resp, product := do(t, srv, http.MethodPost, "/api/products", map[string]any{
		"name": "Agua 500ml", "price": 2.50, "stock": 10, "category": "bebidas",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	productID := product["id"].(string)

	resp, tx := do(t, srv, http.MethodPost,
		fmt.Sprintf("/api/products/%s/sell", productID),
		map[string]any{"quantity": 4})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "4x Agua 500ml", tx["item_description"])
	assert.Equal(t, "10.00", tx["amount"])
	assert.Equal(t, "Cliente General", tx["client_name"])

	// oversell conflicts and stock is untouched
	resp, _ = do(t, srv, http.MethodPost,
		fmt.Sprintf("/api/products/%s/sell", productID),
		map[string]any{"quantity": 7})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	products := doList(t, srv, "/api/products")
	require.Len(t, products, 1)
	assert.Equal(t, float64(6), products[0].(map[string]any)["stock"])

	txs := doList(t, srv, "/api/transactions")
	assert.Len(t, txs, 1)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings_RoundTrip(t *testing.T) {
	srv := newServer(t)

	resp, settings := do(t, srv, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", settings["gym_name"])

	resp, updated := do(t, srv, http.MethodPut, "/api/settings", map[string]any{
		"gym_name": "GymFlex Centro", "ruc": "20123456789", "phone": "555-0100",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GymFlex Centro", updated["gym_name"])

	_, reread := do(t, srv, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, "20123456789", reread["ruc"])
}
