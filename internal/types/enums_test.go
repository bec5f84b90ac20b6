package types

import "testing"

func TestPurchaseStatus_Transitions(t *testing.T) {
	tests := []struct {
		from PurchaseStatus
		to   PurchaseStatus
		ok   bool
	}{
		{PurchasePending, PurchaseAwaitingApproval, true},
		{PurchasePending, PurchaseFailed, true},
		{PurchasePending, PurchaseCompleted, false},
		{PurchaseAwaitingApproval, PurchaseCompleted, true},
		{PurchaseAwaitingApproval, PurchaseFailed, true},
		{PurchaseAwaitingApproval, PurchasePending, false},
		{PurchaseCompleted, PurchaseFailed, false},
		{PurchaseFailed, PurchasePending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.ok {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestPurchaseContext_Valid(t *testing.T) {
	if !ContextPersonal.Valid() || !ContextBusiness.Valid() {
		t.Error("known contexts must be valid")
	}
	if PurchaseContext("enterprise").Valid() || PurchaseContext("").Valid() {
		t.Error("unknown contexts must be invalid")
	}
}

func TestAddOnID_WireContract(t *testing.T) {
	// The numeric catalog mapping is shared with the backend purchase API and
	// must never be renumbered.
	want := map[AddOnID]int{
		AddOnAdminConsole100: 1,
		AddOnAdminConsole200: 2,
		AddOnSecurityGuide5:  3,
		AddOnSecurityGuide8:  4,
		AddOnSecurityGuide12: 5,
		AddOnKeywordModule:   7,
		AddOnKeywordFilter5:  8,
		AddOnKeywordFilter8:  9,
		AddOnKeywordFilter12: 10,
		AddOnUnstructured:    11,
		AddOnRAG:             12,
		AddOnGraphRAG:        13,
		AddOnDocSecurity:     14,
		AddOnAIAnswer:        15,
	}
	for id, n := range want {
		if int(id) != n {
			t.Errorf("id %v = %d, want %d", id, int(id), n)
		}
	}
}
