package pricing

import "capsule/internal/types"

// Add-on price tables. Every category is a total function over a small
// enumerated domain; the "none selected" state and any unrecognized value
// price as 0, never as an error. Amounts are one-time charges except the
// recurring token pack.
var (
	adminConsolePrices = map[types.AdminConsoleTier]types.Money{
		types.AdminTierNone:     0,
		types.AdminTier100To200: types.NewMoney(21050),
		types.AdminTier200To500: types.NewMoney(12630),
		types.AdminTier500Plus:  0,
	}

	securityGuidePrices = map[types.SecurityGuideTier]types.Money{
		types.GuideNone: 0,
		types.Guide5:    types.NewMoney(4210),
		types.Guide8:    types.NewMoney(8420),
		types.Guide12:   types.NewMoney(12630),
	}

	keywordFilterPrices = map[types.KeywordFilterTier]types.Money{
		types.FilterNone: 0,
		types.Filter5:    types.NewMoney(10110),
		types.Filter8:    types.NewMoney(12630),
		types.Filter12:   types.NewMoney(15160),
	}
)

// Fixed prices for the independent boolean modules and the keyword module
// base toggle. Any subset of the boolean modules may be active at once; each
// contributes only its own price.
var (
	keywordModulePrice = types.NewMoney(6740)
	ragPrice           = types.NewMoney(8420)
	graphRAGPrice      = types.NewMoney(31990)
	docSecurityPrice   = types.NewMoney(4210)
	aiAnswerPrice      = types.NewMoney(4210)
	unstructuredPrice  = types.NewMoney(21050)

	tokenPackPrice = types.NewMoney(13000)
)

// PriceForAdminConsole returns the one-time price of an admin console tier.
func PriceForAdminConsole(t types.AdminConsoleTier) types.Money {
	return adminConsolePrices[t]
}

// PriceForSecurityGuide returns the one-time price of a security-guide tier.
func PriceForSecurityGuide(t types.SecurityGuideTier) types.Money {
	return securityGuidePrices[t]
}

// PriceForKeywordFilter returns the sub-filter price. The filter is only
// chargeable when the parent sensitive-keyword module is enabled; gating is
// applied in AddOnTotal, not here.
func PriceForKeywordFilter(t types.KeywordFilterTier) types.Money {
	return keywordFilterPrices[t]
}

// AdminTierForSeats maps a seat count to its admin console tier:
// 100-200 seats -> "100-200", 201-500 -> "200-500", above 500 -> "500+".
// Below the business minimum no tier applies.
func AdminTierForSeats(seats int) types.AdminConsoleTier {
	switch {
	case seats > 500:
		return types.AdminTier500Plus
	case seats > 200:
		return types.AdminTier200To500
	case seats >= 100:
		return types.AdminTier100To200
	default:
		return types.AdminTierNone
	}
}

// ApplySeatChange re-derives the seat-driven parts of a selection after the
// seat count changes. The admin console tier is a derived value: it snaps to
// the tier for the new seat count, overriding any prior manual choice, and
// the token pack count is re-clamped against the new seat bound. This fires
// synchronously on every seat change in the business flow.
func ApplySeatChange(sel types.AddOnSelection, seats int) types.AddOnSelection {
	sel.AdminConsole = AdminTierForSeats(seats)
	sel.TokenPacks = ClampTokenPacks(sel.TokenPacks, seats, true)
	return sel
}

// ClampTokenPacks bounds a recurring token pack count. Counts are never
// negative; when bounded (the business checkout variant) the count may not
// exceed one pack per seat. The personal-style variant is unbounded.
func ClampTokenPacks(count, seats int, bounded bool) int {
	if count < 0 {
		return 0
	}
	if bounded && count > seats {
		return seats
	}
	return count
}

// AddOnTotal sums every category's price for the given selection. Personal
// purchases have no add-ons and always total 0. The sub-filter contributes
// only while the keyword module is enabled, regardless of the stored filter
// selection. There is no proration: each add-on is fully charged or not at
// all.
func AddOnTotal(ctx types.PurchaseContext, sel types.AddOnSelection) types.Money {
	if ctx != types.ContextBusiness {
		return 0
	}

	var total types.Money
	total += PriceForAdminConsole(sel.AdminConsole)
	total += PriceForSecurityGuide(sel.SecurityGuide)

	if sel.KeywordModule {
		total += keywordModulePrice
		total += PriceForKeywordFilter(sel.KeywordFilter)
	}

	if sel.RAG {
		total += ragPrice
	}
	if sel.GraphRAG {
		total += graphRAGPrice
	}
	if sel.DocSecurity {
		total += docSecurityPrice
	}
	if sel.AIAnswer {
		total += aiAnswerPrice
	}
	if sel.Unstructured {
		total += unstructuredPrice
	}

	if sel.TokenPacks > 0 {
		total += tokenPackPrice.MulInt(sel.TokenPacks)
	}

	return total
}

// CatalogIDs serializes a selection into the backend's numeric add-on
// identifiers for the purchase request. The id mapping is a fixed wire
// contract (admin tiers 1-2, security guide 3-5, keyword module 7 with
// filters 8-10, modules 11-15). The zero-priced "500+" admin tier and the
// token pack count are not catalog items and carry no id.
func CatalogIDs(ctx types.PurchaseContext, sel types.AddOnSelection) []types.AddOnID {
	if ctx != types.ContextBusiness {
		return nil
	}

	var ids []types.AddOnID

	switch sel.AdminConsole {
	case types.AdminTier100To200:
		ids = append(ids, types.AddOnAdminConsole100)
	case types.AdminTier200To500:
		ids = append(ids, types.AddOnAdminConsole200)
	}

	switch sel.SecurityGuide {
	case types.Guide5:
		ids = append(ids, types.AddOnSecurityGuide5)
	case types.Guide8:
		ids = append(ids, types.AddOnSecurityGuide8)
	case types.Guide12:
		ids = append(ids, types.AddOnSecurityGuide12)
	}

	if sel.KeywordModule {
		ids = append(ids, types.AddOnKeywordModule)
		switch sel.KeywordFilter {
		case types.Filter5:
			ids = append(ids, types.AddOnKeywordFilter5)
		case types.Filter8:
			ids = append(ids, types.AddOnKeywordFilter8)
		case types.Filter12:
			ids = append(ids, types.AddOnKeywordFilter12)
		}
	}

	if sel.Unstructured {
		ids = append(ids, types.AddOnUnstructured)
	}
	if sel.RAG {
		ids = append(ids, types.AddOnRAG)
	}
	if sel.GraphRAG {
		ids = append(ids, types.AddOnGraphRAG)
	}
	if sel.DocSecurity {
		ids = append(ids, types.AddOnDocSecurity)
	}
	if sel.AIAnswer {
		ids = append(ids, types.AddOnAIAnswer)
	}

	return ids
}
