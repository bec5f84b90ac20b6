package pricing

import "capsule/internal/types"

// SeatRule describes the seat-count constraints of one purchase context.
type SeatRule struct {
	Min  int
	Max  int
	Step int
}

// seatRules fixes the per-context seat constraints: business sells in blocks
// of 50 starting at 100 seats, personal sells single seats.
var seatRules = map[types.PurchaseContext]SeatRule{
	types.ContextBusiness: {Min: 100, Max: 10000, Step: 50},
	types.ContextPersonal: {Min: 1, Max: 100, Step: 1},
}

// SeatRuleFor returns the seat constraints for the given context. Unknown
// contexts get the personal rule.
func SeatRuleFor(ctx types.PurchaseContext) SeatRule {
	if r, ok := seatRules[ctx]; ok {
		return r
	}
	return seatRules[types.ContextPersonal]
}

// ClampSeats validates a requested seat count against the context's rule.
// Out-of-range or off-step values are rejected by returning the last valid
// value unchanged -- the edit silently reverts rather than raising an error.
// A current value outside the range (e.g. after a context switch) snaps to
// the nearest bound.
func ClampSeats(ctx types.PurchaseContext, requested, current int) int {
	rule := SeatRuleFor(ctx)
	if requested >= rule.Min && requested <= rule.Max && (requested-rule.Min)%rule.Step == 0 {
		return requested
	}
	if current < rule.Min {
		return rule.Min
	}
	if current > rule.Max {
		return rule.Max
	}
	return current
}

// RecurringQuote is the recurring portion of a quote: the discounted monthly
// price and the total over the full contract.
type RecurringQuote struct {
	Monthly types.Money `json:"monthly"`
	Total   types.Money `json:"total"`
}

// ComputeRecurring combines the plan unit price, seat count, and contract
// discount:
//
//	base    = unitPrice * seats
//	monthly = base * (1 - discount/100)
//	total   = monthly * months
//
// Seat and month validation happens at the input boundary; this function
// computes exactly what it is given.
func ComputeRecurring(plan types.Plan, seats, months int) RecurringQuote {
	base := plan.UnitPrice.MulInt(seats)
	monthly := base.PercentOff(DiscountFor(months))
	return RecurringQuote{
		Monthly: monthly,
		Total:   monthly.MulInt(months),
	}
}
