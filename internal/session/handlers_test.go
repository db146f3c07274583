package session_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/discount"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/session"
)

type memStore struct {
	products map[string]catalog.Product
}

func (m *memStore) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (m *memStore) ListProducts(context.Context, string) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) ListCategories(context.Context, string) ([]catalog.Category, error) {
	return nil, nil
}

func (m *memStore) ListOrderDiscounts(context.Context, string) ([]discount.Discount, error) {
	return nil, nil
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	obs.MustRegisterDomainMetrics("pos", prometheus.NewRegistry())

	store := &memStore{products: map[string]catalog.Product{
		"p-espresso": {
			ID:        "p-espresso",
			Name:      "Espresso",
			UnitPrice: decimal.NewFromInt(10),
			ModifierGroups: []catalog.ModifierGroup{
				{Name: "Size", Options: []catalog.Option{{Name: "Double", PriceDelta: decimal.NewFromInt(2)}}},
			},
		},
	}}
	h := &session.Handler{
		Registry: &session.Registry{StoreID: "store-1", Repo: &stubRepo{}},
		Catalog:  &catalog.Service{Store: store},
		Validate: validator.New(),
	}
	r := chi.NewRouter()
	r.Route("/v1", h.Mount)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestSessionCheckoutFlow(t *testing.T) {
	srv := newServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sessionID := body["data"].(map[string]any)["sessionId"].(string)
	base := fmt.Sprintf("%s/v1/sessions/%s", srv.URL, sessionID)

	resp, _ = doJSON(t, http.MethodPost, base+"/items", map[string]any{"productId": "p-espresso"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = doJSON(t, http.MethodPost, base+"/items", map[string]any{"productId": "p-espresso"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := body["data"].(map[string]any)["lines"].([]any)
	require.Len(t, lines, 1, "same product merges into one line")
	require.Equal(t, float64(2), lines[0].(map[string]any)["quantity"])

	resp, _ = doJSON(t, http.MethodPost, base+"/lines/0/modifiers", map[string]any{"group": "Size", "option": "Double"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, base+"/lines/0/discounts", map[string]any{"name": "Ten", "kind": "percentage", "value": "10"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = doJSON(t, http.MethodPut, base+"/discount", map[string]any{"name": "Five", "kind": "fixed", "value": "5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	summary := body["data"].(map[string]any)["summary"].(map[string]any)
	// ((10+2)*2)*0.9 = 21.6, minus the fixed 5 order discount = 16.6
	require.Equal(t, "16.6", summary["total"])

	resp, body = doJSON(t, http.MethodPost, base+"/finalize", map[string]any{
		"paymentMethod":  "cash",
		"paymentDetails": map[string]any{"tendered": "20"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The cart is reset after a committed sale.
	resp, body = doJSON(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body["data"].(map[string]any)["lines"])
}

func TestSessionErrorMapping(t *testing.T) {
	srv := newServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/sessions/0b351428-0000-0000-0000-000000000000", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body := doJSON(t, http.MethodPost, srv.URL+"/v1/sessions", nil)
	sessionID := body["data"].(map[string]any)["sessionId"].(string)
	base := fmt.Sprintf("%s/v1/sessions/%s", srv.URL, sessionID)

	resp, _ = doJSON(t, http.MethodPost, base+"/items", map[string]any{"productId": "nope"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base+"/lines/5/modifiers", map[string]any{"group": "Size", "option": "Double"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base+"/finalize", map[string]any{"paymentMethod": "cash"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "empty cart cannot finalize")

	resp, _ = doJSON(t, http.MethodPost, base+"/items", map[string]any{"productId": "p-espresso"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, base+"/finalize", map[string]any{"paymentMethod": "check"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "unknown payment method rejected")

	resp, _ = doJSON(t, http.MethodPost, base+"/lines/0/discounts", map[string]any{"name": "Bad", "kind": "percentage", "value": "150"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "percentage above 100 rejected")
}
