package service

import (
	"errors"
	"fmt"

	"go-pos-inventory/pkg/validator"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrSelfDelete         = errors.New("you cannot delete your own account")
	ErrAccountPending     = errors.New("account is pending admin approval")
	ErrAccountRejected    = errors.New("account has been rejected")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrRegistrationClosed = errors.New("public registration is disabled, an admin must create accounts")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// InsufficientStockError is returned when a sale asks for more than is on hand.
type InsufficientStockError struct {
	Product   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: only %d available, %d requested", e.Product, e.Available, e.Requested)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// validate runs struct tags and turns the first failure into a ValidationError.
func validate(req interface{}) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	reason := "failed on '" + first.Tag + "'"
	switch first.Tag {
	case "required", "uuid_required":
		reason = "is required"
	case "min":
		reason = "must be at least " + first.Value
	case "max":
		reason = "must be at most " + first.Value
	case "gte":
		reason = "must be greater than or equal to " + first.Value
	case "gt":
		reason = "must be greater than " + first.Value
	case "oneof":
		reason = "must be one of: " + first.Value
	}
	return invalid(first.FailedField, reason)
}
