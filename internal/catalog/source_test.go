package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"capsule/internal/types"
)

func limit(v int64) *int64 { return &v }

type stubFetcher struct {
	mu      sync.Mutex
	records map[types.PurchaseContext][]types.RemotePlanRecord
	errs    map[types.PurchaseContext]error
	calls   int
}

func (f *stubFetcher) FetchPlans(_ context.Context, purchase types.PurchaseContext) ([]types.RemotePlanRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[purchase]; err != nil {
		return nil, err
	}
	return f.records[purchase], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func businessRecords() []types.RemotePlanRecord {
	return []types.RemotePlanRecord{
		{ID: 1, Name: "PLUS", Price: 14.99, MonthlyTokenLimit: limit(0), ContractMonth: 1},
		{ID: 2, Name: "PRO", Price: 19.99, MonthlyTokenLimit: limit(120000), ContractMonth: 1},
		{ID: 3, Name: "MAX", Price: 39.99, MonthlyTokenLimit: limit(280000), ContractMonth: 1},
	}
}

func TestSource_WarmLoadsBothContexts(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[types.PurchaseContext][]types.RemotePlanRecord{
			types.ContextPersonal: {
				{ID: 10, Name: "BASIC", Price: 9.99, MonthlyTokenLimit: limit(0), ContractMonth: 1},
			},
			types.ContextBusiness: businessRecords(),
		},
	}
	src := NewSource(fetcher, testLogger())
	src.Warm(context.Background())

	if !src.Remote(types.ContextBusiness) || !src.Remote(types.ContextPersonal) {
		t.Error("both contexts should be served remotely after a successful warm")
	}

	table := src.Table(types.ContextBusiness)
	if len(table.Plans) != 3 {
		t.Fatalf("plans = %d", len(table.Plans))
	}
	if table.Plans[2].Name != types.PlanMax || table.Plans[2].MaxTokens != 0 {
		t.Errorf("top tier = %+v", table.Plans[2])
	}
}

func TestSource_FetchFailureFallsBack(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[types.PurchaseContext][]types.RemotePlanRecord{
			types.ContextBusiness: businessRecords(),
		},
		errs: map[types.PurchaseContext]error{
			types.ContextPersonal: errors.New("upstream down"),
		},
	}
	src := NewSource(fetcher, testLogger())
	src.Warm(context.Background())

	if src.Remote(types.ContextPersonal) {
		t.Error("personal should fall back after fetch failure")
	}
	if !src.Remote(types.ContextBusiness) {
		t.Error("business should be remote")
	}

	// Fallback still prices personal requests.
	table := src.Table(types.ContextPersonal)
	if len(table.Plans) == 0 {
		t.Fatal("fallback table is empty")
	}
	if table.Remote {
		t.Error("fallback table should not be marked remote")
	}
}

func TestSource_NilFetcherServesFallback(t *testing.T) {
	src := NewSource(nil, testLogger())
	src.Warm(context.Background())

	if src.Remote(types.ContextBusiness) {
		t.Error("nil fetcher must serve fallback")
	}
	if len(src.Table(types.ContextBusiness).Plans) == 0 {
		t.Error("fallback table is empty")
	}
}

func TestSource_WarmRetryRecovers(t *testing.T) {
	fetcher := &stubFetcher{
		errs: map[types.PurchaseContext]error{
			types.ContextPersonal: errors.New("timeout"),
			types.ContextBusiness: errors.New("timeout"),
		},
	}
	src := NewSource(fetcher, testLogger())
	src.Warm(context.Background())

	if src.Remote(types.ContextBusiness) {
		t.Fatal("warm should have failed")
	}

	fetcher.mu.Lock()
	fetcher.errs = nil
	fetcher.records = map[types.PurchaseContext][]types.RemotePlanRecord{
		types.ContextBusiness: businessRecords(),
	}
	fetcher.mu.Unlock()

	src.Warm(context.Background())
	if !src.Remote(types.ContextBusiness) {
		t.Error("retry warm did not recover")
	}
}

func TestSource_UnusableRemoteRecordsCountAsFallback(t *testing.T) {
	fetcher := &stubFetcher{
		records: map[types.PurchaseContext][]types.RemotePlanRecord{
			types.ContextBusiness: {
				{ID: 9, Name: "ADMIN", Price: 0, MonthlyTokenLimit: nil, ContractMonth: 1},
			},
		},
	}
	src := NewSource(fetcher, testLogger())
	src.Warm(context.Background())

	if src.Remote(types.ContextBusiness) {
		t.Error("records without token limits should resolve to fallback")
	}
}
