// Package services defines the business logic for providers, orders, and the
// WhatsApp order-confirmation flow. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrProviderNotFound indicates that the requested provider does not
	// exist or is not accessible to the current user.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrOrderNotFound indicates that the requested order does not exist or
	// is not accessible to the current user.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidPhone is returned when a provider phone number does not
	// contain enough digits to be dialable.
	ErrInvalidPhone = errors.New("phone number is invalid")

	// ErrEmptyName is returned when a provider is created or updated with a
	// blank name.
	ErrEmptyName = errors.New("name is empty")

	// ErrNoItems is returned when an order is created without valid line
	// items (empty list, blank product, or non-positive quantity).
	ErrNoItems = errors.New("order has no items")

	// ErrInvalidStatus is returned when an order status value is outside the
	// allowed set.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrNotPending is returned when a confirmation request is sent for an
	// order that is no longer awaiting confirmation.
	ErrNotPending = errors.New("order is not pending")

	// ErrSendFailed wraps upstream gateway failures so handlers can map them
	// to a 502 without inspecting transport details.
	ErrSendFailed = errors.New("whatsapp send failed")

	// ErrAlreadyProcessed indicates a webhook redelivery of a message id the
	// pipeline has already handled; callers treat it as a no-op.
	ErrAlreadyProcessed = errors.New("message already processed")
)
