package pricing

import (
	"testing"

	"capsule/internal/types"
)

func TestComputeRecurring_TwelveMonthContract(t *testing.T) {
	// seats=100, unitPrice=19.99, months=12 (5% discount):
	// monthly = 100 * 19.99 * 0.95 = 1899.05, total = 1899.05 * 12 = 22788.60.
	plan := types.Plan{Name: types.PlanPro, UnitPrice: types.MoneyFromFloat(19.99)}
	got := ComputeRecurring(plan, 100, 12)

	if got.Monthly != types.MoneyFromFloat(1899.05) {
		t.Errorf("monthly = %s, want 1899.05", got.Monthly)
	}
	if got.Total != types.MoneyFromFloat(22788.60) {
		t.Errorf("total = %s, want 22788.60", got.Total)
	}
}

func TestComputeRecurring_DiscountExactForAllContracts(t *testing.T) {
	// For every offered contract length, monthly must equal
	// unitPrice * seats * (1 - discount/100) exactly, and the contract total
	// must equal monthly * months.
	plan := types.Plan{Name: types.PlanPro, UnitPrice: types.MoneyFromFloat(19.99)}
	seats := 100

	for _, months := range ContractMonths {
		got := ComputeRecurring(plan, seats, months)

		base := plan.UnitPrice.MulInt(seats)
		wantMonthly := base.PercentOff(DiscountFor(months))
		if got.Monthly != wantMonthly {
			t.Errorf("months=%d: monthly = %s, want %s", months, got.Monthly, wantMonthly)
		}
		if got.Total != got.Monthly.MulInt(months) {
			t.Errorf("months=%d: total = %s, want monthly*months = %s",
				months, got.Total, got.Monthly.MulInt(months))
		}
	}
}

func TestComputeRecurring_NoDiscountSingleMonth(t *testing.T) {
	plan := types.Plan{Name: types.PlanBasic, UnitPrice: types.MoneyFromFloat(9.99)}
	got := ComputeRecurring(plan, 3, 1)

	if got.Monthly != types.MoneyFromFloat(29.97) {
		t.Errorf("monthly = %s, want 29.97", got.Monthly)
	}
	if got.Total != got.Monthly {
		t.Errorf("total = %s, want %s for a one month contract", got.Total, got.Monthly)
	}
}

func TestClampSeats_ValidValuesPassThrough(t *testing.T) {
	tests := []struct {
		name      string
		ctx       types.PurchaseContext
		requested int
	}{
		{"business minimum", types.ContextBusiness, 100},
		{"business on step", types.ContextBusiness, 350},
		{"business maximum", types.ContextBusiness, 10000},
		{"personal minimum", types.ContextPersonal, 1},
		{"personal mid range", types.ContextPersonal, 42},
		{"personal maximum", types.ContextPersonal, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampSeats(tt.ctx, tt.requested, tt.requested); got != tt.requested {
				t.Errorf("ClampSeats(%s, %d) = %d, want the value unchanged", tt.ctx, tt.requested, got)
			}
		})
	}
}

func TestClampSeats_InvalidEditReverts(t *testing.T) {
	// An out-of-range or off-step edit is silently rejected: the seat count
	// reverts to the last valid value rather than erroring.
	tests := []struct {
		name      string
		ctx       types.PurchaseContext
		requested int
		current   int
		want      int
	}{
		{"business below minimum", types.ContextBusiness, 50, 100, 100},
		{"business off step", types.ContextBusiness, 175, 150, 150},
		{"business above maximum", types.ContextBusiness, 99999, 500, 500},
		{"personal zero", types.ContextPersonal, 0, 5, 5},
		{"personal negative", types.ContextPersonal, -3, 1, 1},
		{"personal above maximum", types.ContextPersonal, 500, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampSeats(tt.ctx, tt.requested, tt.current); got != tt.want {
				t.Errorf("ClampSeats(%s, %d, current=%d) = %d, want %d",
					tt.ctx, tt.requested, tt.current, got, tt.want)
			}
		})
	}
}

func TestClampSeats_StaleCurrentSnapsToBounds(t *testing.T) {
	// After a context switch the previous value may itself be out of range;
	// it snaps to the nearest bound instead of surviving.
	if got := ClampSeats(types.ContextBusiness, 50, 10); got != 100 {
		t.Errorf("stale low current: got %d, want 100", got)
	}
	if got := ClampSeats(types.ContextPersonal, 0, 500); got != 100 {
		t.Errorf("stale high current: got %d, want 100", got)
	}
}
