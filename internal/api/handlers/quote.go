package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"capsule/internal/core"
	"capsule/internal/pricing"
	"capsule/internal/types"
)

// QuoteHandler computes authoritative price quotes.
type QuoteHandler struct {
	catalog     PlanCatalog
	checkoutURL string
	validator   *core.Validator
	logger      *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler. checkoutURL is the base URL of the
// checkout page the handoff link points at.
func NewQuoteHandler(catalog PlanCatalog, checkoutURL string, v *core.Validator, l *slog.Logger) *QuoteHandler {
	if l == nil {
		l = slog.Default()
	}
	return &QuoteHandler{
		catalog:     catalog,
		checkoutURL: checkoutURL,
		validator:   v,
		logger:      l,
	}
}

// RegisterRoutes mounts the quote endpoint.
func (h *QuoteHandler) RegisterRoutes(r chi.Router) {
	r.Post("/quote", h.CreateQuote)
}

// QuoteRequest is the request body for POST /v1/quote.
type QuoteRequest struct {
	Context     types.PurchaseContext `json:"context" validate:"required,purchase_context"`
	TokenVolume int64                 `json:"token_volume" validate:"min=0"`
	SeatCount   int                   `json:"seat_count" validate:"min=1"`
	Months      int                   `json:"months" validate:"oneof=1 6 12 18 24"`
	AddOns      types.AddOnSelection  `json:"add_ons"`
}

// quoteResponse wraps the computed quote with the pre-filled checkout URL.
type quoteResponse struct {
	Quote      types.Quote `json:"quote"`
	HandoffURL string      `json:"handoff_url"`
}

// CreateQuote handles POST /v1/quote. The quote is computed entirely
// server-side from the validated input; seat counts and add-on tiers outside
// the allowed ranges are clamped rather than rejected, matching what the
// pricing engine will charge at checkout.
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	in := types.QuoteInput{
		Context:     req.Context,
		TokenVolume: req.TokenVolume,
		SeatCount:   req.SeatCount,
		Months:      req.Months,
		AddOns:      req.AddOns,
		RemotePlans: h.catalog.Records(req.Context),
	}
	quote := pricing.ComputeQuote(in)

	resp := core.APIResponse{
		Data: quoteResponse{
			Quote:      quote,
			HandoffURL: h.checkoutURL + "?" + pricing.HandoffParams(in, quote).Encode(),
		},
	}
	if !h.catalog.Remote(req.Context) {
		resp.Meta = &core.ResponseMeta{
			Warnings: []string{"plan catalog unavailable, quote priced from built-in tables"},
		}
	}

	core.JSON(w, r, http.StatusOK, resp)
}
