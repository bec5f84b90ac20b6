// Package handlers contains the HTTP handler implementations for the Capsule
// pricing API. Handlers define their service contracts locally and receive
// implementations via constructors, which keeps them decoupled from concrete
// types and easy to mock in tests.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"capsule/internal/core"
	"capsule/internal/pricing"
	"capsule/internal/types"
)

// PlanCatalog supplies the effective plan tables. Implemented by
// catalog.Source.
type PlanCatalog interface {
	Table(purchase types.PurchaseContext) types.PlanTable
	Records(purchase types.PurchaseContext) []types.RemotePlanRecord
	Remote(purchase types.PurchaseContext) bool
}

// PlansHandler serves the plan table and plan resolution endpoints.
type PlansHandler struct {
	catalog PlanCatalog
	logger  *slog.Logger
}

// NewPlansHandler creates a PlansHandler.
func NewPlansHandler(catalog PlanCatalog, l *slog.Logger) *PlansHandler {
	if l == nil {
		l = slog.Default()
	}
	return &PlansHandler{catalog: catalog, logger: l}
}

// RegisterRoutes mounts the plan endpoints.
func (h *PlansHandler) RegisterRoutes(r chi.Router) {
	r.Get("/plans", h.GetPlans)
	r.Get("/plans/resolve", h.ResolvePlan)
}

// planTableResponse is the response body for GET /v1/plans.
type planTableResponse struct {
	Context types.PurchaseContext `json:"context"`
	Plans   []types.Plan          `json:"plans"`
	Remote  bool                  `json:"remote"`
}

// GetPlans handles GET /v1/plans?context=business.
// An unknown or missing context defaults to personal, mirroring the quote
// engine's behavior. When the catalog is running on fallback tables the
// response carries a warning in meta.
func (h *PlansHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	purchase := contextParam(r)
	table := h.catalog.Table(purchase)

	resp := core.APIResponse{
		Data: planTableResponse{
			Context: table.Context,
			Plans:   table.Plans,
			Remote:  table.Remote,
		},
	}
	if !table.Remote {
		resp.Meta = &core.ResponseMeta{
			Warnings: []string{"plan catalog unavailable, serving built-in tables"},
		}
	}

	core.JSON(w, r, http.StatusOK, resp)
}

// resolveResponse is the response body for GET /v1/plans/resolve.
type resolveResponse struct {
	Context     types.PurchaseContext `json:"context"`
	TokenVolume int64                 `json:"token_volume"`
	Plan        types.Plan            `json:"plan"`
}

// ResolvePlan handles GET /v1/plans/resolve?context=business&token_volume=150000.
// It maps a monthly token volume to the recommended plan tier.
func (h *PlansHandler) ResolvePlan(w http.ResponseWriter, r *http.Request) {
	purchase := contextParam(r)

	rawVolume := r.URL.Query().Get("token_volume")
	volume, err := strconv.ParseInt(rawVolume, 10, 64)
	if err != nil || volume < 0 {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationTokenVolume,
			"token_volume must be a non-negative integer",
			err,
		))
		return
	}

	plan := pricing.ResolvePlan(volume, purchase, h.catalog.Records(purchase))

	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: resolveResponse{
			Context:     purchase,
			TokenVolume: volume,
			Plan:        plan,
		},
	})
}

// contextParam reads the purchase context query parameter, defaulting unknown
// values to personal.
func contextParam(r *http.Request) types.PurchaseContext {
	purchase := types.PurchaseContext(r.URL.Query().Get("context"))
	if !purchase.Valid() {
		return types.ContextPersonal
	}
	return purchase
}
