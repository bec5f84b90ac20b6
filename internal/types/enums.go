package types

// PurchaseContext distinguishes the two storefront flows. Business and
// personal purchases use different plan tables, seat rules, and add-on
// availability.
type PurchaseContext string

const (
	ContextPersonal PurchaseContext = "personal"
	ContextBusiness PurchaseContext = "business"
)

// Valid reports whether the context is one of the two known storefronts.
func (c PurchaseContext) Valid() bool {
	return c == ContextPersonal || c == ContextBusiness
}

// PlanName identifies a subscription tier.
type PlanName string

const (
	PlanBasic PlanName = "BASIC"
	PlanPlus  PlanName = "PLUS"
	PlanPro   PlanName = "PRO"
	PlanMax   PlanName = "MAX"
)

// AdminConsoleTier selects the admin console add-on sizing. The tier is
// derived from the seat count and overrides any prior manual choice whenever
// the seat count crosses a boundary.
type AdminConsoleTier string

const (
	AdminTierNone     AdminConsoleTier = ""
	AdminTier100To200 AdminConsoleTier = "100-200"
	AdminTier200To500 AdminConsoleTier = "200-500"
	AdminTier500Plus  AdminConsoleTier = "500+"
)

// SecurityGuideTier is the number of topics in the security-guide add-on.
// Zero means the add-on is not selected.
type SecurityGuideTier int

const (
	GuideNone SecurityGuideTier = 0
	Guide5    SecurityGuideTier = 5
	Guide8    SecurityGuideTier = 8
	Guide12   SecurityGuideTier = 12
)

// KeywordFilterTier selects the sub-filter pack of the sensitive-keyword
// module. A stored selection is only chargeable while the parent module is
// enabled.
type KeywordFilterTier string

const (
	FilterNone KeywordFilterTier = ""
	Filter5    KeywordFilterTier = "filter5"
	Filter8    KeywordFilterTier = "filter8"
	Filter12   KeywordFilterTier = "filter12"
)

// PurchaseStatus is the checkout handshake state machine:
//
//	pending -> awaiting_approval -> completed
//	pending -> failed
//	awaiting_approval -> failed
//
// Failures are terminal; there is no automatic retry.
type PurchaseStatus string

const (
	PurchasePending          PurchaseStatus = "pending"
	PurchaseAwaitingApproval PurchaseStatus = "awaiting_approval"
	PurchaseCompleted        PurchaseStatus = "completed"
	PurchaseFailed           PurchaseStatus = "failed"
)

// CanTransitionTo reports whether moving from s to next is a legal step of
// the handshake. Terminal states accept no further transitions.
func (s PurchaseStatus) CanTransitionTo(next PurchaseStatus) bool {
	switch s {
	case PurchasePending:
		return next == PurchaseAwaitingApproval || next == PurchaseFailed
	case PurchaseAwaitingApproval:
		return next == PurchaseCompleted || next == PurchaseFailed
	default:
		return false
	}
}

// AddOnID is the numeric add-on identifier used by the backend purchase API.
// The mapping is a fixed wire contract and must never be renumbered.
type AddOnID int

const (
	AddOnAdminConsole100 AddOnID = 1
	AddOnAdminConsole200 AddOnID = 2
	AddOnSecurityGuide5  AddOnID = 3
	AddOnSecurityGuide8  AddOnID = 4
	AddOnSecurityGuide12 AddOnID = 5
	AddOnKeywordModule   AddOnID = 7
	AddOnKeywordFilter5  AddOnID = 8
	AddOnKeywordFilter8  AddOnID = 9
	AddOnKeywordFilter12 AddOnID = 10
	AddOnUnstructured    AddOnID = 11
	AddOnRAG             AddOnID = 12
	AddOnGraphRAG        AddOnID = 13
	AddOnDocSecurity     AddOnID = 14
	AddOnAIAnswer        AddOnID = 15
)
