package db

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"capsule/internal/types"
)

// PurchaseRepo persists checkout purchases. A purchase row snapshots the
// quote the buyer accepted plus the payment provider handshake state.
//
// Status transitions are enforced with optimistic concurrency: updates carry
// the expected current status in the WHERE clause, so a concurrent confirm
// and fail cannot both win.
type PurchaseRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewPurchaseRepo creates a new PurchaseRepo backed by the given database
// connection (pool or transaction).
func NewPurchaseRepo(db DBTX, logger *slog.Logger) *PurchaseRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurchaseRepo{db: db, logger: logger}
}

const purchaseColumns = `id, context, plan_name, unit_price_cents, token_volume,
	seat_count, months, discount_percent, monthly_total_cents,
	one_time_total_cents, total_amount_cents, add_ons, add_on_ids,
	provider_plan_id, provider_subscription_id, status, failure_reason,
	created_at, updated_at`

// Create inserts a new purchase row. The caller supplies the ID and the
// initial status (always pending at the start of a checkout).
func (r *PurchaseRepo) Create(ctx context.Context, p *types.Purchase) error {
	addOns, err := json.Marshal(p.AddOns)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode add-on selection", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO purchases (
			id, context, plan_name, unit_price_cents, token_volume,
			seat_count, months, discount_percent, monthly_total_cents,
			one_time_total_cents, total_amount_cents, add_ons, add_on_ids,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())`,
		p.ID,
		p.Context,
		p.PlanName,
		int64(p.UnitPrice),
		p.TokenVolume,
		p.SeatCount,
		p.Months,
		p.DiscountPercent,
		int64(p.MonthlyTotal),
		int64(p.OneTimeTotal),
		int64(p.TotalAmount),
		addOns,
		addOnIDsToInts(p.AddOnIDs),
		p.Status,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert purchase", err)
	}

	return nil
}

// GetByID fetches a purchase by its ID.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*types.Purchase, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`,
		id,
	)

	var (
		p         types.Purchase
		unitPrice int64
		monthly   int64
		oneTime   int64
		total     int64
		addOns    []byte
		addOnIDs  []int64
	)
	err := row.Scan(
		&p.ID, &p.Context, &p.PlanName, &unitPrice, &p.TokenVolume,
		&p.SeatCount, &p.Months, &p.DiscountPercent, &monthly,
		&oneTime, &total, &addOns, &addOnIDs,
		&p.ProviderPlanID, &p.ProviderSubscriptionID, &p.Status, &p.FailureReason,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundPurchase, "purchase not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch purchase", err)
	}

	p.UnitPrice = types.Money(unitPrice)
	p.MonthlyTotal = types.Money(monthly)
	p.OneTimeTotal = types.Money(oneTime)
	p.TotalAmount = types.Money(total)

	if len(addOns) > 0 {
		if err := json.Unmarshal(addOns, &p.AddOns); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to decode add-on selection", err)
		}
	}
	p.AddOnIDs = intsToAddOnIDs(addOnIDs)

	return &p, nil
}

// SetProviderRefs records the provider-side billing plan and subscription IDs
// obtained during the payment handshake. Only pending purchases can gain
// provider references.
func (r *PurchaseRepo) SetProviderRefs(ctx context.Context, id, providerPlanID, providerSubscriptionID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE purchases
		 SET provider_plan_id = $1,
		     provider_subscription_id = $2,
		     updated_at = NOW()
		 WHERE id = $3
		   AND status = $4`,
		providerPlanID,
		providerSubscriptionID,
		id,
		types.PurchasePending,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to set provider references", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeConflictPurchaseState, "purchase is not pending", nil)
	}
	return nil
}

// UpdateStatus moves a purchase from one status to another. The transition is
// validated in memory first, then enforced in the WHERE clause so concurrent
// updaters cannot both succeed. failureReason is stored only when the target
// status is failed.
func (r *PurchaseRepo) UpdateStatus(ctx context.Context, id string, from, to types.PurchaseStatus, failureReason string) error {
	if !from.CanTransitionTo(to) {
		return types.NewAppError(
			types.ErrCodeConflictPurchaseState,
			"invalid purchase status transition",
			nil,
		).WithDetails(map[string]any{"from": string(from), "to": string(to)})
	}

	if to != types.PurchaseFailed {
		failureReason = ""
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE purchases
		 SET status = $1,
		     failure_reason = $2,
		     updated_at = NOW()
		 WHERE id = $3
		   AND status = $4`,
		to,
		failureReason,
		id,
		from,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update purchase status", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the purchase does not exist or another writer moved it first.
		r.logger.Warn("purchase status update lost race or target missing",
			slog.String("purchase_id", id),
			slog.String("from", string(from)),
			slog.String("to", string(to)),
		)
		return types.NewAppError(types.ErrCodeConflictConcurrent, "purchase was modified concurrently", nil)
	}

	return nil
}

func addOnIDsToInts(ids []types.AddOnID) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func intsToAddOnIDs(ids []int64) []types.AddOnID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]types.AddOnID, len(ids))
	for i, id := range ids {
		out[i] = types.AddOnID(id)
	}
	return out
}
