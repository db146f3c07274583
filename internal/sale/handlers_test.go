package sale_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/sale"
)

type historyRepo struct {
	records []sale.Record
}

func (r *historyRepo) Create(_ context.Context, sub sale.Submission) (sale.Record, error) {
	rec := sale.Record{Submission: sub, ID: uuid.New(), CreatedAt: time.Now()}
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *historyRepo) List(_ context.Context, _ string, limit, offset int) ([]sale.Record, error) {
	if offset >= len(r.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.records) {
		end = len(r.records)
	}
	return r.records[offset:end], nil
}

func (r *historyRepo) Get(_ context.Context, id uuid.UUID) (sale.Record, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return sale.Record{}, sale.ErrNotFound
}

func TestSalesHistoryEndpoints(t *testing.T) {
	repo := &historyRepo{}
	rec, err := repo.Create(context.Background(), sale.Submission{
		StoreID:       "store-1",
		Total:         decimal.RequireFromString("16.6"),
		PaymentMethod: sale.PaymentCash,
	})
	require.NoError(t, err)

	h := &sale.Handler{Repo: repo, StoreID: "store-1"}
	r := chi.NewRouter()
	r.Route("/v1", h.Mount)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/v1/sales?page=1&limit=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data []sale.Record `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	require.True(t, body.Data[0].Total.Equal(rec.Total))

	resp2, err := http.Get(srv.URL + "/v1/sales/" + rec.ID.String())
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Get(srv.URL + "/v1/sales/" + uuid.NewString())
	require.NoError(t, err)
	defer resp3.Body.Close()
	require.Equal(t, http.StatusNotFound, resp3.StatusCode)

	resp4, err := http.Get(srv.URL + "/v1/sales/not-a-uuid")
	require.NoError(t, err)
	defer resp4.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp4.StatusCode)
}
