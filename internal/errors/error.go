package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrValidation blocks submission; it is the only error surfaced
	// to the shopper as a hard failure.
	ErrValidation = errors.New("missing or invalid checkout fields")

	// ErrCheckoutInFlight rejects a second submission while one is
	// still running against the same cart.
	ErrCheckoutInFlight = errors.New("a checkout is already in progress")

	// ErrCartClear means even the fallback path could not complete;
	// the whole submission is retryable.
	ErrCartClear = errors.New("failed clearing cart after order placement")

	ErrEmptyCart       = errors.New("cart is empty")
	ErrKeyAbsent       = errors.New("key absent")
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
