package domain

import "errors"

// ErrorKind classifies business rule failures
type ErrorKind int

const (
	KindAlreadyRegistered ErrorKind = iota + 1
	KindNotFound
	KindStockExceeded
	KindStockUnderflow
	KindInvalidQuantity
)

func (k ErrorKind) String() string {
	switch k {
	case KindAlreadyRegistered:
		return "already_registered"
	case KindNotFound:
		return "not_found"
	case KindStockExceeded:
		return "stock_exceeded"
	case KindStockUnderflow:
		return "stock_underflow"
	case KindInvalidQuantity:
		return "invalid_quantity"
	default:
		return "unknown"
	}
}

// Error is a business rule failure visible to callers
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so wrapped or re-created errors
// still compare equal to the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrProductAlreadyRegistered = &Error{Kind: KindAlreadyRegistered, Message: "Product already registered!"}
	ErrProductNotFound          = &Error{Kind: KindNotFound, Message: "Product not found!"}
	ErrStockExceeded            = &Error{Kind: KindStockExceeded, Message: "Quantity exceeds maximum stock capacity!"}
	ErrStockUnderflow           = &Error{Kind: KindStockUnderflow, Message: "Insufficient quantity in stock!"}
	ErrInvalidQuantity          = &Error{Kind: KindInvalidQuantity, Message: "Quantity must be greater than zero!"}

	// ErrSupplierNotFound is only returned by the store; suppliers are never looked up by callers directly.
	ErrSupplierNotFound = errors.New("supplier not found")
)

// KindOf extracts the error kind, reporting false for errors that are not business failures
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
