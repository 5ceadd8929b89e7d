package bill

import (
	"github.com/cockroachdb/errors"
)

// Failure kinds a store call or local check can produce. Errors are marked
// with one of these, so errors.Is works while Error() keeps the original text.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrServer     = errors.New("server error")
	ErrNetwork    = errors.New("network error")
)

// Validation failures callers may want to tell apart
var (
	ErrNotPicture      = errors.New("the uploaded file is not picture type")
	ErrReceiptRequired = errors.New("a receipt picture must be attached before submitting")
)

// NewValidationError creates an error detected locally, before reaching a store
func NewValidationError(msg string) error {
	return errors.Mark(errors.New(msg), ErrValidation)
}

// NotPicture returns ErrNotPicture marked as a validation error
func NotPicture() error {
	return errors.Mark(ErrNotPicture, ErrValidation)
}

// ReceiptRequired returns ErrReceiptRequired marked as a validation error
func ReceiptRequired() error {
	return errors.Mark(ErrReceiptRequired, ErrValidation)
}

// MarkAs tags err with one of the failure kinds
func MarkAs(err error, kind error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, kind)
}

// Kind returns the failure kind of err. Errors carrying no kind are treated
// as server errors.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrNetwork, ErrServer} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrServer
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNotPicture checks if an error is a rejected receipt type
func IsNotPicture(err error) bool {
	return errors.Is(err, ErrNotPicture)
}
