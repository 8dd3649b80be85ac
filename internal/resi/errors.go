package resi

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCustomerNotFound reports a customer code absent from shipment history.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound reports a product code absent from shipment history.
	ErrProductNotFound = errors.New("product not found")
	// ErrReturnLineNotFound reports an unknown return line id.
	ErrReturnLineNotFound = errors.New("return line not found")
)

// Resolution kinds, also used as metric labels.
const (
	KindCustomer = "customer"
	KindProduct  = "product"
	KindTariff   = "tariff"
)

// LineError is one validation failure. Line is 1-based; 0 marks the document
// header or the update payload.
type LineError struct {
	Line   int    `json:"line"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// ValidationError carries every failure found in a request.
type ValidationError struct {
	Errors []LineError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, le := range e.Errors {
		parts = append(parts, fmt.Sprintf("line %d %s: %s", le.Line, le.Field, le.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(errs ...LineError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// ResolutionMiss names a reference code that could not be resolved.
type ResolutionMiss struct {
	Kind string
	Code string
	Line int
}

func (e *ResolutionMiss) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s code %q not found", e.Line, e.Kind, e.Code)
	}
	return fmt.Sprintf("%s code %q not found", e.Kind, e.Code)
}

func (e *ResolutionMiss) Unwrap() error {
	if e.Kind == KindCustomer {
		return ErrCustomerNotFound
	}
	return ErrProductNotFound
}

// PersistenceError wraps a storage failure. Its message is not shown to clients.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
