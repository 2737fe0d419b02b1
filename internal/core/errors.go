package core

import "errors"

// Error kinds. Every error returned by the stores and services matches
// exactly one of these through errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

var (
	ErrUserNotFound        = kindError("user not found", ErrNotFound)
	ErrCategoryNotFound    = kindError("category not found", ErrNotFound)
	ErrBudgetNotFound      = kindError("budget not found", ErrNotFound)
	ErrTransactionNotFound = kindError("transaction not found", ErrNotFound)
	ErrNoBudgetForPeriod   = kindError("no budget for this period", ErrNotFound)

	ErrNotOwner = kindError("resource belongs to another user", ErrForbidden)

	ErrDuplicateBudget = kindError("a budget already exists for this category and period", ErrConflict)
	ErrDuplicateUser   = kindError("user already exists", ErrConflict)

	ErrInvalidAmount       = kindError("amount must be a positive number", ErrValidation)
	ErrAmountTooLarge      = kindError("amount must be less than 1000000000000", ErrValidation)
	ErrInvalidMonth        = kindError("month must be between 1 and 12", ErrValidation)
	ErrInvalidYear         = kindError("year must be between 1900 and 9999", ErrValidation)
	ErrInvalidDate         = kindError("date is required", ErrValidation)
	ErrInvalidCategoryType = kindError("category type must be INCOME or EXPENSE", ErrValidation)
	ErrEmptyName           = kindError("name is required", ErrValidation)
	ErrNameTooLong         = kindError("name too long (max 100 characters)", ErrValidation)
	ErrDescriptionTooLong  = kindError("description too long (max 255 characters)", ErrValidation)
	ErrInvalidEmail        = kindError("email is required", ErrValidation)
	ErrMissingCategory     = kindError("category is required", ErrValidation)
	ErrMissingUser         = kindError("user id is required", ErrValidation)
)

// KindError carries a user facing message and unwraps to one of the kinds above.
type KindError struct {
	msg  string
	kind error
}

func kindError(msg string, kind error) *KindError {
	return &KindError{msg: msg, kind: kind}
}

func (e *KindError) Error() string { return e.msg }

func (e *KindError) Unwrap() error { return e.kind }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
