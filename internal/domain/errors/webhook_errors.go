package errors

import "errors"

var (
	// ErrInvalidSignature indicates the webhook body failed signature verification
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrMalformedEvent indicates the event envelope is missing required fields
	ErrMalformedEvent = errors.New("malformed webhook event")

	// ErrMissingMetadata indicates a payment object lacks the video/user linkage and
	// cannot be settled; the event is acknowledged but never applied
	ErrMissingMetadata = errors.New("payment metadata missing video_id or user_id")

	// ErrPaymentNotFound indicates no payment record exists for the reference
	ErrPaymentNotFound = errors.New("payment record not found")
)
