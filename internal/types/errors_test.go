package types

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidJSON, http.StatusBadRequest},
		{ErrCodeValidationSeatRange, http.StatusBadRequest},
		{ErrCodeNotFoundPurchase, http.StatusNotFound},
		{ErrCodeConflictPurchaseState, http.StatusConflict},
		{ErrCodePaymentDeclined, http.StatusPaymentRequired},
		{ErrCodeUpstreamPlanService, http.StatusBadGateway},
		{ErrCodeUpstreamPayment, http.StatusBadGateway},
		{ErrCodeInternalDB, http.StatusInternalServerError},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	appErr := NewAppError(ErrCodeInternalDB, "query failed", inner)

	if appErr.Error() != "internal_database_error: query failed" {
		t.Errorf("Error() = %q", appErr.Error())
	}
	if !errors.Is(appErr, inner) {
		t.Error("Unwrap chain lost the inner error")
	}

	var target *AppError
	if !errors.As(error(appErr), &target) {
		t.Error("errors.As failed to match *AppError")
	}
}

func TestAppError_WithDetailsDoesNotMutate(t *testing.T) {
	base := NewAppError(ErrCodeValidationSeatRange, "seat count out of range", nil)
	derived := base.WithDetails(map[string]any{"min": 100, "max": 10000})

	if base.Details != nil {
		t.Error("WithDetails mutated the original error")
	}
	if derived.Details["min"] != 100 {
		t.Errorf("derived details = %v", derived.Details)
	}
}
