package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"capsule/internal/checkout"
	"capsule/internal/core"
	"capsule/internal/types"
)

// CheckoutService drives the purchase flow. Implemented by checkout.Service.
type CheckoutService interface {
	Start(ctx context.Context, in types.QuoteInput) (*checkout.StartResult, error)
	Confirm(ctx context.Context, id string) (*types.Purchase, error)
	Get(ctx context.Context, id string) (*types.Purchase, error)
}

// CheckoutHandler exposes the checkout endpoints.
type CheckoutHandler struct {
	svc       CheckoutService
	validator *core.Validator
	logger    *slog.Logger
}

// NewCheckoutHandler creates a CheckoutHandler.
func NewCheckoutHandler(svc CheckoutService, v *core.Validator, l *slog.Logger) *CheckoutHandler {
	if l == nil {
		l = slog.Default()
	}
	return &CheckoutHandler{svc: svc, validator: v, logger: l}
}

// RegisterRoutes mounts the checkout endpoints.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/checkout", h.StartCheckout)
	r.Post("/checkout/{purchaseID}/confirm", h.ConfirmCheckout)
	r.Get("/checkout/{purchaseID}", h.GetPurchase)
}

// checkoutResponse is the response body for the checkout endpoints.
type checkoutResponse struct {
	Purchase    *types.Purchase `json:"purchase"`
	ApprovalURL string          `json:"approval_url,omitempty"`
}

// StartCheckout handles POST /v1/checkout. The request body is the same shape
// as a quote request; the server recomputes the price before charging, so a
// stale or tampered client-side quote has no effect.
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.svc.Start(r.Context(), types.QuoteInput{
		Context:     req.Context,
		TokenVolume: req.TokenVolume,
		SeatCount:   req.SeatCount,
		Months:      req.Months,
		AddOns:      req.AddOns,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{
		Data: checkoutResponse{
			Purchase:    result.Purchase,
			ApprovalURL: result.ApprovalURL,
		},
	})
}

// ConfirmCheckout handles POST /v1/checkout/{purchaseID}/confirm, called when
// the buyer returns from the provider's approval page.
func (h *CheckoutHandler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "purchaseID")

	purchase, err := h.svc.Confirm(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: checkoutResponse{Purchase: purchase},
	})
}

// GetPurchase handles GET /v1/checkout/{purchaseID}.
func (h *CheckoutHandler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "purchaseID")

	purchase, err := h.svc.Get(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: checkoutResponse{Purchase: purchase},
	})
}
