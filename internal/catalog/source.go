// Package catalog caches the published subscription plan list for the
// lifetime of the process. The list is fetched once from the backend plan
// service at startup; if the fetch fails the built-in fallback tables serve
// every request, so pricing never depends on the upstream being available.
package catalog

import (
	"context"
	"log/slog"
	"sync"

	"capsule/internal/pricing"
	"capsule/internal/types"
)

// PlanFetcher fetches the published plan list for a purchase context.
// Implemented by external.PlanServiceClient.
type PlanFetcher interface {
	FetchPlans(ctx context.Context, purchase types.PurchaseContext) ([]types.RemotePlanRecord, error)
}

// Source is the process-wide plan catalog. Zero value is not usable;
// construct with NewSource.
type Source struct {
	fetcher PlanFetcher
	logger  *slog.Logger

	mu      sync.RWMutex
	records map[types.PurchaseContext][]types.RemotePlanRecord
}

// NewSource creates a Source. fetcher may be nil, in which case the catalog
// permanently serves the fallback tables (used when no plan service URL is
// configured).
func NewSource(fetcher PlanFetcher, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		fetcher: fetcher,
		logger:  logger,
		records: make(map[types.PurchaseContext][]types.RemotePlanRecord),
	}
}

// Warm fetches the plan list for both purchase contexts. Failures are logged
// and swallowed: the affected context keeps serving fallback tables. Warm is
// safe to call again to retry a failed fetch.
func (s *Source) Warm(ctx context.Context) {
	if s.fetcher == nil {
		s.logger.Info("plan catalog fetch disabled, serving built-in tables")
		return
	}

	for _, purchase := range []types.PurchaseContext{types.ContextPersonal, types.ContextBusiness} {
		records, err := s.fetcher.FetchPlans(ctx, purchase)
		if err != nil {
			s.logger.Warn("plan catalog fetch failed, serving built-in tables",
				slog.String("purchase_type", string(purchase)),
				slog.Any("error", err),
			)
			continue
		}
		if len(records) == 0 {
			s.logger.Warn("plan catalog returned no plans, serving built-in tables",
				slog.String("purchase_type", string(purchase)),
			)
			continue
		}

		s.mu.Lock()
		s.records[purchase] = records
		s.mu.Unlock()

		s.logger.Info("plan catalog loaded",
			slog.String("purchase_type", string(purchase)),
			slog.Int("plans", len(records)),
		)
	}
}

// Records returns the cached remote plan records for the context, or nil when
// the catalog is running on fallback tables. The returned slice must not be
// modified.
func (s *Source) Records(purchase types.PurchaseContext) []types.RemotePlanRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[purchase]
}

// Table returns the effective plan table for the context: resolved from the
// cached remote records when present, otherwise the built-in fallback.
func (s *Source) Table(purchase types.PurchaseContext) types.PlanTable {
	return pricing.ResolvePlanTable(purchase, s.Records(purchase))
}

// Remote reports whether the context is served from fetched records rather
// than the built-in fallback tables. Records that resolve to an empty table
// (e.g. all rows missing token limits) count as fallback.
func (s *Source) Remote(purchase types.PurchaseContext) bool {
	return s.Table(purchase).Remote
}
