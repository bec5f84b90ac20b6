// Package pricing implements the quote engine for the LLM Capsule
// storefront: plan tier resolution, contract discounts, recurring and add-on
// pricing, display unit conversions, and quote aggregation.
//
// The engine is a pure function pipeline. It performs no I/O, holds no
// state, and is recomputed in full on every input change; callers own the
// mutable form state and the remote plan list fetch.
package pricing

import (
	"sort"

	"capsule/internal/types"
)

// earlyAdmissionRatio classifies a volume into a tier once it reaches 80% of
// that tier's ceiling. This only applies when resolution is driven by a
// remote plan list; the fallback tables use strict thresholds. The two rules
// produce different boundaries on purpose -- see DESIGN.md.
const earlyAdmissionRatio = 0.8

// fallbackTables defines the built-in plan tables used when no remote plan
// list is available. Thresholds and the business Max price are fixed wire
// contracts; the remaining unit prices ascend with the threshold so a larger
// volume never resolves to a cheaper tier.
//
//	personal: BASIC 0 | PLUS 70,000 | PRO 120,000 | MAX 280,000
//	business:          PLUS 0       | PRO 120,000 | MAX 280,000
//
// Business has no BASIC tier. MaxTokens 0 marks an unbounded ceiling.
var fallbackTables = map[types.PurchaseContext][]types.Plan{
	types.ContextPersonal: {
		{Name: types.PlanBasic, UnitPrice: types.MoneyFromFloat(9.99), MinTokens: 0, MaxTokens: 70000},
		{Name: types.PlanPlus, UnitPrice: types.MoneyFromFloat(14.99), MinTokens: 70000, MaxTokens: 120000},
		{Name: types.PlanPro, UnitPrice: types.MoneyFromFloat(19.99), MinTokens: 120000, MaxTokens: 280000},
		{Name: types.PlanMax, UnitPrice: types.MoneyFromFloat(29.99), MinTokens: 280000, MaxTokens: 0},
	},
	types.ContextBusiness: {
		{Name: types.PlanPlus, UnitPrice: types.MoneyFromFloat(14.99), MinTokens: 0, MaxTokens: 120000},
		{Name: types.PlanPro, UnitPrice: types.MoneyFromFloat(19.99), MinTokens: 120000, MaxTokens: 280000},
		{Name: types.PlanMax, UnitPrice: types.MoneyFromFloat(39.99), MinTokens: 280000, MaxTokens: 0},
	},
}

// FallbackTable returns the built-in plan table for the given context.
// Unknown contexts fall back to the personal table. The returned slice is a
// copy; callers may not mutate the package tables.
func FallbackTable(ctx types.PurchaseContext) types.PlanTable {
	src, ok := fallbackTables[ctx]
	if !ok {
		ctx = types.ContextPersonal
		src = fallbackTables[ctx]
	}
	plans := make([]types.Plan, len(src))
	copy(plans, src)
	return types.PlanTable{Context: ctx, Plans: plans}
}

// ResolvePlanTable merges a remote plan list into a PlanTable for the given
// context. Records without a monthly token limit are skipped; if nothing
// usable remains, the fallback table is returned. The merge is pure: the
// network fetch (and its failure handling) belongs to the caller.
func ResolvePlanTable(ctx types.PurchaseContext, remote []types.RemotePlanRecord) types.PlanTable {
	usable := usableRecords(remote)
	if len(usable) == 0 {
		return FallbackTable(ctx)
	}

	plans := make([]types.Plan, 0, len(usable))
	var prevLimit int64
	for i, rec := range usable {
		p := types.Plan{
			Name:      types.PlanName(rec.Name),
			UnitPrice: types.MoneyFromFloat(rec.Price),
			MinTokens: prevLimit,
			MaxTokens: *rec.MonthlyTokenLimit,
		}
		if i == len(usable)-1 {
			// Highest tier has no enforced ceiling.
			p.MaxTokens = 0
		}
		plans = append(plans, p)
		prevLimit = *rec.MonthlyTokenLimit
	}
	return types.PlanTable{Context: ctx, Plans: plans, Remote: true}
}

// ResolvePlan maps a monthly token volume to a plan tier.
//
// With a usable remote list, tiers are scanned from the highest limit
// downward and the first tier whose limit*0.8 is covered by the volume wins;
// if none match, the lowest tier is selected. Without a remote list the
// fallback table applies strict thresholds: the highest tier whose MinTokens
// does not exceed the volume.
//
// Volume 0 resolves to the lowest tier; volume above every ceiling resolves
// to the highest tier. There is no error case.
func ResolvePlan(tokenVolume int64, ctx types.PurchaseContext, remote []types.RemotePlanRecord) types.Plan {
	if tokenVolume < 0 {
		tokenVolume = 0
	}

	if usable := usableRecords(remote); len(usable) > 0 {
		table := ResolvePlanTable(ctx, remote)
		for i := len(usable) - 1; i >= 0; i-- {
			limit := *usable[i].MonthlyTokenLimit
			if float64(tokenVolume) >= float64(limit)*earlyAdmissionRatio {
				return table.Plans[i]
			}
		}
		return table.Plans[0]
	}

	plans := FallbackTable(ctx).Plans
	selected := plans[0]
	for _, p := range plans {
		if tokenVolume >= p.MinTokens {
			selected = p
		}
	}
	return selected
}

// usableRecords filters to records with a defined token limit and returns
// them sorted ascending by limit.
func usableRecords(remote []types.RemotePlanRecord) []types.RemotePlanRecord {
	if len(remote) == 0 {
		return nil
	}
	usable := make([]types.RemotePlanRecord, 0, len(remote))
	for _, rec := range remote {
		if rec.MonthlyTokenLimit != nil {
			usable = append(usable, rec)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return *usable[i].MonthlyTokenLimit < *usable[j].MonthlyTokenLimit
	})
	return usable
}
