package pricing

import "capsule/internal/types"

// ComputeQuote runs the full quote pipeline over one immutable input:
// resolve the plan tier, validate seats, re-derive seat-driven add-on state,
// price the recurring and add-on portions, and aggregate the totals. The
// function is pure and idempotent; identical inputs always produce identical
// quotes.
//
// Aggregation: grandTotal = contractTotal + addOnTotal for business,
// grandTotal = contractTotal for personal (personal has no add-ons).
func ComputeQuote(in types.QuoteInput) types.Quote {
	ctx := in.Context
	if !ctx.Valid() {
		ctx = types.ContextPersonal
	}

	plan := ResolvePlan(in.TokenVolume, ctx, in.RemotePlans)

	// Treat the incoming seat count as both the requested and last-valid
	// value: a well-formed count passes through, anything else snaps to the
	// context bounds.
	seats := ClampSeats(ctx, in.SeatCount, in.SeatCount)

	sel := in.AddOns
	if ctx == types.ContextBusiness {
		sel = ApplySeatChange(sel, seats)
	}

	recurring := ComputeRecurring(plan, seats, in.Months)
	addOns := AddOnTotal(ctx, sel)

	return types.Quote{
		Plan:            plan,
		SeatCount:       seats,
		Months:          in.Months,
		DiscountPercent: DiscountFor(in.Months),

		MonthlyRecurring: recurring.Monthly,
		ContractTotal:    recurring.Total,
		OneTimeTotal:     addOns,
		GrandTotal:       recurring.Total + addOns,

		Breakdown: CheckoutProfile.Breakdown(in.TokenVolume),
		PageView:  LandingProfile.Breakdown(in.TokenVolume),
	}
}
