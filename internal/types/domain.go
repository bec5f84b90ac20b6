package types

import "time"

// Plan is one subscription tier of a plan table. MinTokens is the admission
// threshold for the fallback table; MaxTokens is the tier ceiling (0 means
// unbounded -- selection code must treat 0 as no ceiling).
type Plan struct {
	Name      PlanName `json:"name"`
	UnitPrice Money    `json:"unit_price"`
	MinTokens int64    `json:"min_tokens"`
	MaxTokens int64    `json:"max_tokens"`
}

// PlanTable is the ordered set of contiguous tiers for one purchase context.
// Tiers are sorted ascending by threshold; for any token volume exactly one
// tier is selected.
type PlanTable struct {
	Context PurchaseContext `json:"context"`
	Plans   []Plan          `json:"plans"`
	// Remote is true when the table was built from the plan service rather
	// than the built-in fallback.
	Remote bool `json:"remote"`
}

// RemotePlanRecord mirrors one row of the plan service response. A nil
// MonthlyTokenLimit marks a record that does not participate in volume-based
// tier resolution (e.g. custom contract plans).
type RemotePlanRecord struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	Price             float64  `json:"price"`
	MonthlyTokenLimit *int64   `json:"monthly_token_limit"`
	ContractMonth     int      `json:"contract_month"`
}

// AddOnSelection is the per-category selection state of the business
// checkout form. The zero value means "nothing selected" and prices to 0 in
// every category.
type AddOnSelection struct {
	AdminConsole  AdminConsoleTier  `json:"admin_console"`
	SecurityGuide SecurityGuideTier `json:"security_guide"`
	KeywordModule bool              `json:"keyword_module"`
	KeywordFilter KeywordFilterTier `json:"keyword_filter"`
	RAG           bool              `json:"rag"`
	GraphRAG      bool              `json:"graph_rag"`
	DocSecurity   bool              `json:"doc_security"`
	AIAnswer      bool              `json:"ai_answer"`
	Unstructured  bool              `json:"unstructured"`
	TokenPacks    int               `json:"token_packs"`
}

// QuoteInput is the immutable input to the quote engine. The UI layer owns
// all mutable form state; the engine recomputes the full quote from this
// struct on every change.
type QuoteInput struct {
	Context     PurchaseContext  `json:"context"`
	TokenVolume int64            `json:"token_volume"`
	SeatCount   int              `json:"seat_count"`
	Months      int              `json:"months"`
	AddOns      AddOnSelection   `json:"add_ons"`
	// RemotePlans, when non-empty, drives tier resolution instead of the
	// built-in fallback table.
	RemotePlans []RemotePlanRecord `json:"-"`
}

// TokenBreakdown is a display-only unit conversion of a token volume.
// Nothing in it feeds back into pricing.
type TokenBreakdown struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	KoreanChars  int64 `json:"korean_chars"`
	EnglishChars int64 `json:"english_chars"`
	Pages        int64 `json:"pages"`
}

// Quote is the derived output of the engine. It is recomputed on every input
// change and never stored or partially applied.
type Quote struct {
	Plan            Plan  `json:"plan"`
	SeatCount       int   `json:"seat_count"`
	Months          int   `json:"months"`
	DiscountPercent int   `json:"discount_percent"`

	MonthlyRecurring Money `json:"monthly_recurring_total"`
	ContractTotal    Money `json:"contract_total"`
	OneTimeTotal     Money `json:"one_time_total"`
	GrandTotal       Money `json:"grand_total"`

	// Breakdown uses the checkout-page conversion profile; PageView uses the
	// landing-page profile. The two ratio sets are intentionally kept apart.
	Breakdown TokenBreakdown `json:"breakdown"`
	PageView  TokenBreakdown `json:"page_view"`
}

// Purchase is the authoritative server-side record of a checkout. It
// snapshots the quote at purchase time so later plan-table changes cannot
// alter what the customer agreed to.
type Purchase struct {
	ID      string          `json:"id" db:"id"`
	Context PurchaseContext `json:"context" db:"context"`

	PlanName        PlanName `json:"plan" db:"plan_name"`
	UnitPrice       Money    `json:"unit_price" db:"unit_price_cents"`
	TokenVolume     int64    `json:"token_volume" db:"token_volume"`
	SeatCount       int      `json:"seat_count" db:"seat_count"`
	Months          int      `json:"months" db:"months"`
	DiscountPercent int      `json:"discount_percent" db:"discount_percent"`

	MonthlyTotal Money `json:"monthly_total" db:"monthly_total_cents"`
	OneTimeTotal Money `json:"one_time_total" db:"one_time_total_cents"`
	TotalAmount  Money `json:"total_amount" db:"total_amount_cents"`

	AddOns   AddOnSelection `json:"add_ons" db:"add_ons"`
	AddOnIDs []AddOnID      `json:"add_on_ids" db:"add_on_ids"`

	ProviderPlanID         string `json:"-" db:"provider_plan_id"`
	ProviderSubscriptionID string `json:"-" db:"provider_subscription_id"`

	Status        PurchaseStatus `json:"status" db:"status"`
	FailureReason string         `json:"failure_reason,omitempty" db:"failure_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
