package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("invalid product")
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateSKU = errors.New("sku already exists")
	ErrMissingField = errors.New("missing field")
)

// FieldError reports which product field was rejected and why.
type FieldError struct {
	Field  string
	Reason string
	kind   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.kind }

func invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason, kind: ErrValidation}
}

func missing(field string) error {
	return &FieldError{Field: field, Reason: "required", kind: ErrMissingField}
}

func notFound(sku string) error {
	return fmt.Errorf("%w: sku %q", ErrNotFound, sku)
}

func duplicate(sku string) error {
	return fmt.Errorf("%w: sku %q", ErrDuplicateSKU, sku)
}

// IsInventoryError reports whether err belongs to the catalog's own error
// kinds, as opposed to an I/O or backend failure.
func IsInventoryError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateSKU) ||
		errors.Is(err, ErrMissingField)
}
