package core

import "errors"

// Validation errors.
var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidType    = errors.New("invalid type")
	ErrEmptyCategory  = errors.New("empty category")
	ErrEmptyName      = errors.New("empty name")
	ErrEmptyPartyName = errors.New("empty party name")
)

// Referential errors.
var (
	ErrGoalNotFound        = errors.New("goal not found")
	ErrCategoryNotFound    = errors.New("savings category not found")
	ErrDebtNotFound        = errors.New("debt not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnknownBank         = errors.New("unknown bank")
)

// ErrDuplicateGoalName is returned when an active goal already uses the name.
var ErrDuplicateGoalName = errors.New("a goal with that name already exists")

// IsValidation reports whether err stems from rejected user input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrInvalidDate, ErrInvalidType,
		ErrEmptyCategory, ErrEmptyName, ErrEmptyPartyName, ErrUnknownBank,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err refers to a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGoalNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrDebtNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}
