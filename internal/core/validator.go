package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"capsule/internal/types"
)

// Validator wraps go-playground/validator with domain-specific rules and
// translates violations into structured AppErrors suitable for API responses.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator and registers custom validation tags.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New()

	// purchase_context restricts a field to the known purchase contexts.
	_ = v.RegisterValidation("purchase_context", func(fl validator.FieldLevel) bool {
		return types.PurchaseContext(fl.Field().String()).Valid()
	})

	return &Validator{
		validate: v,
		logger:   logger,
	}
}

// ValidateStruct runs struct tag validation on s. On failure it returns a
// *types.AppError with code "validation_missing_required_field" and a details
// map of field -> violated rule. Non-validation errors (e.g. passing a
// non-struct) are wrapped as internal errors.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "validation failed", err)
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fieldName(fe)] = ruleDescription(fe)
	}

	return types.NewAppError(
		types.ErrCodeValidationMissingField,
		"request failed validation",
		err,
	).WithDetails(details)
}

// fieldName returns the lowercased leaf field name from the validator's
// namespace, e.g. "QuoteRequest.SeatCount" -> "seatcount".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.LastIndexByte(ns, '.'); idx >= 0 {
		ns = ns[idx+1:]
	}
	return strings.ToLower(ns)
}

// ruleDescription renders the violated rule with its parameter, e.g.
// "min=1" or "required".
func ruleDescription(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
	}
	return fe.Tag()
}
