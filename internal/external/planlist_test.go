package external

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"capsule/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPlanServiceClient_FetchPlans(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/plans" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("purchase_type"); got != "business" {
			t.Errorf("purchase_type = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"plans": [
				{"id": 4, "name": "PLUS", "price": 14.99, "monthly_token_limit": 0, "contract_month": 1, "purchase_type": "business"},
				{"id": 5, "name": "PRO", "price": 19.99, "monthly_token_limit": 120000, "contract_month": 1, "purchase_type": "business"},
				{"id": 6, "name": "ADMIN", "price": 0, "monthly_token_limit": null, "contract_month": 1, "purchase_type": "business"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewPlanServiceClient(srv.Client(), PlanServiceConfig{
		BaseURL: srv.URL,
		Logger:  discardLogger(),
	})

	records, err := c.FetchPlans(context.Background(), types.ContextBusiness)
	if err != nil {
		t.Fatalf("FetchPlans: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[1].ID != 5 || records[1].Name != "PRO" || records[1].Price != 19.99 {
		t.Errorf("record = %+v", records[1])
	}
	if records[1].MonthlyTokenLimit == nil || *records[1].MonthlyTokenLimit != 120000 {
		t.Errorf("limit = %v", records[1].MonthlyTokenLimit)
	}
	if records[2].MonthlyTokenLimit != nil {
		t.Errorf("null limit should decode to nil, got %v", *records[2].MonthlyTokenLimit)
	}
}

func TestPlanServiceClient_Non200IsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewPlanServiceClient(srv.Client(), PlanServiceConfig{
		BaseURL: srv.URL,
		Logger:  discardLogger(),
	})

	_, err := c.FetchPlans(context.Background(), types.ContextPersonal)
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeUpstreamPlanService {
		t.Errorf("err = %v, want plan service AppError", err)
	}
}

func TestPlanServiceClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"plans": [`))
	}))
	defer srv.Close()

	c := NewPlanServiceClient(srv.Client(), PlanServiceConfig{
		BaseURL: srv.URL,
		Logger:  discardLogger(),
	})

	_, err := c.FetchPlans(context.Background(), types.ContextPersonal)
	if err == nil {
		t.Fatal("expected decode error")
	}
}
