// Package checkout orchestrates the purchase flow: snapshot the quote,
// persist the purchase, and drive the payment provider handshake through
// PENDING -> AWAITING_APPROVAL -> COMPLETED/FAILED.
package checkout

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"capsule/internal/external"
	"capsule/internal/pricing"
	"capsule/internal/types"
)

// PurchaseStore is the persistence surface the service needs. Implemented by
// db.PurchaseRepo.
type PurchaseStore interface {
	Create(ctx context.Context, p *types.Purchase) error
	GetByID(ctx context.Context, id string) (*types.Purchase, error)
	SetProviderRefs(ctx context.Context, id, providerPlanID, providerSubscriptionID string) error
	UpdateStatus(ctx context.Context, id string, from, to types.PurchaseStatus, failureReason string) error
}

// PaymentProvider is the provider handshake surface. Implemented by
// external.PayPalClient.
type PaymentProvider interface {
	EnsureBillingPlan(ctx context.Context, req external.BillingPlanRequest) (string, error)
	CreateSubscription(ctx context.Context, providerPlanID, purchaseID string) (*external.SubscriptionHandle, error)
	ConfirmSubscription(ctx context.Context, subscriptionID string) (bool, error)
}

// PlanSource supplies the cached remote plan records for quote computation.
// Implemented by catalog.Source.
type PlanSource interface {
	Records(purchase types.PurchaseContext) []types.RemotePlanRecord
}

// Service drives checkouts. Quotes are recomputed server-side from the raw
// input; client-supplied totals are never trusted.
type Service struct {
	store    PurchaseStore
	provider PaymentProvider
	plans    PlanSource
	logger   *slog.Logger
}

// NewService creates a checkout Service.
func NewService(store PurchaseStore, provider PaymentProvider, plans PlanSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		provider: provider,
		plans:    plans,
		logger:   logger,
	}
}

// StartResult is returned by Start: the persisted purchase and the provider
// URL the buyer must visit to approve the subscription.
type StartResult struct {
	Purchase    *types.Purchase
	ApprovalURL string
}

// Start computes the authoritative quote for the input, persists a pending
// purchase, and performs the provider handshake. On success the purchase is
// AWAITING_APPROVAL and the approval URL is returned. On any provider
// failure the purchase is marked FAILED with the reason recorded; there is
// no automatic retry, the buyer starts a fresh checkout instead.
func (s *Service) Start(ctx context.Context, in types.QuoteInput) (*StartResult, error) {
	in.RemotePlans = s.plans.Records(in.Context)
	quote := pricing.ComputeQuote(in)

	// Snapshot the selection the quote actually priced: for business the
	// admin console tier and token pack bound follow the clamped seat count.
	selection := in.AddOns
	if in.Context == types.ContextBusiness {
		selection = pricing.ApplySeatChange(selection, quote.SeatCount)
	}

	purchase := &types.Purchase{
		ID:              "pur_" + uuid.NewString(),
		Context:         in.Context,
		PlanName:        quote.Plan.Name,
		UnitPrice:       quote.Plan.UnitPrice,
		TokenVolume:     in.TokenVolume,
		SeatCount:       quote.SeatCount,
		Months:          quote.Months,
		DiscountPercent: quote.DiscountPercent,
		MonthlyTotal:    quote.MonthlyRecurring,
		OneTimeTotal:    quote.OneTimeTotal,
		TotalAmount:     quote.GrandTotal,
		AddOns:          selection,
		AddOnIDs:        pricing.CatalogIDs(in.Context, selection),
		Status:          types.PurchasePending,
	}

	if err := s.store.Create(ctx, purchase); err != nil {
		return nil, err
	}

	providerPlanID, err := s.provider.EnsureBillingPlan(ctx, external.BillingPlanRequest{
		PlanName:      string(quote.Plan.Name),
		Context:       in.Context,
		MonthlyAmount: quote.MonthlyRecurring,
		Months:        quote.Months,
	})
	if err != nil {
		s.fail(ctx, purchase.ID, "billing plan creation failed")
		return nil, err
	}

	handle, err := s.provider.CreateSubscription(ctx, providerPlanID, purchase.ID)
	if err != nil {
		s.fail(ctx, purchase.ID, "subscription creation failed")
		return nil, err
	}

	if err := s.store.SetProviderRefs(ctx, purchase.ID, providerPlanID, handle.SubscriptionID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateStatus(ctx, purchase.ID, types.PurchasePending, types.PurchaseAwaitingApproval, ""); err != nil {
		return nil, err
	}

	purchase.ProviderPlanID = providerPlanID
	purchase.ProviderSubscriptionID = handle.SubscriptionID
	purchase.Status = types.PurchaseAwaitingApproval

	s.logger.Info("checkout started",
		slog.String("purchase_id", purchase.ID),
		slog.String("plan", string(purchase.PlanName)),
		slog.String("total", purchase.TotalAmount.String()),
	)

	return &StartResult{
		Purchase:    purchase,
		ApprovalURL: handle.ApprovalURL,
	}, nil
}

// Confirm settles a purchase after the buyer returns from the provider's
// approval page. An active subscription completes the purchase; a terminal
// provider state fails it. Indeterminate provider answers (still pending
// approval, transport errors) leave the purchase AWAITING_APPROVAL so
// Confirm can be retried.
//
// Confirm is idempotent for already-completed purchases.
func (s *Service) Confirm(ctx context.Context, id string) (*types.Purchase, error) {
	purchase, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch purchase.Status {
	case types.PurchaseCompleted:
		return purchase, nil
	case types.PurchaseAwaitingApproval:
		// Fall through to the provider check.
	default:
		return nil, types.NewAppError(
			types.ErrCodeConflictPurchaseState,
			"purchase cannot be confirmed in its current state",
			nil,
		).WithDetails(map[string]any{"status": string(purchase.Status)})
	}

	approved, err := s.provider.ConfirmSubscription(ctx, purchase.ProviderSubscriptionID)
	if err != nil {
		return nil, err
	}

	if !approved {
		reason := "provider reported terminal subscription state"
		if err := s.store.UpdateStatus(ctx, id, types.PurchaseAwaitingApproval, types.PurchaseFailed, reason); err != nil {
			return nil, err
		}
		purchase.Status = types.PurchaseFailed
		purchase.FailureReason = reason
		return purchase, nil
	}

	if err := s.store.UpdateStatus(ctx, id, types.PurchaseAwaitingApproval, types.PurchaseCompleted, ""); err != nil {
		return nil, err
	}
	purchase.Status = types.PurchaseCompleted

	s.logger.Info("checkout completed", slog.String("purchase_id", id))

	return purchase, nil
}

// Get fetches a purchase by ID.
func (s *Service) Get(ctx context.Context, id string) (*types.Purchase, error) {
	return s.store.GetByID(ctx, id)
}

// fail moves a pending purchase to FAILED, logging rather than propagating
// secondary errors so the original provider error reaches the caller.
func (s *Service) fail(ctx context.Context, id, reason string) {
	if err := s.store.UpdateStatus(ctx, id, types.PurchasePending, types.PurchaseFailed, reason); err != nil {
		s.logger.Error("failed to mark purchase failed",
			slog.String("purchase_id", id),
			slog.Any("error", err),
		)
	}
}
