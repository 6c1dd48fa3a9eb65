package services

import "errors"

// Validation errors are returned before the store is touched.
var (
	ErrInvalidIdentifier    = errors.New("invalid identifier")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrInvalidItemList      = errors.New("invalid item list")
	ErrInvalidCustomization = errors.New("invalid customization")
	ErrInvalidOrderType     = errors.New("invalid order type")
	ErrInvalidStatus        = errors.New("invalid order status")
)

// Conflict errors describe contention or policy limits; callers surface them to the user.
var (
	ErrTableOccupied           = errors.New("table already has an active session")
	ErrTableInactive           = errors.New("table is not accepting orders")
	ErrTableCapacity           = errors.New("too many sessions for this table")
	ErrAlreadyAtAnotherTable   = errors.New("device already has an active session at another table")
	ErrRateLimited             = errors.New("too many sessions opened from this device")
	ErrSessionClosed           = errors.New("session is closed")
	ErrSessionAlreadyClosed    = errors.New("session is already closed")
	ErrSessionExpired          = errors.New("session has expired")
	ErrSessionPendingClosure   = errors.New("bill has been requested, cart is locked")
	ErrQuantityLimitExceeded   = errors.New("quantity limit exceeded")
	ErrItemUnavailable         = errors.New("item unavailable")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrStaleStatus             = errors.New("order status changed concurrently")
)

var ErrNotAuthorized = errors.New("not authorized for this restaurant")

// Not-found errors do not reveal whether the record exists under another restaurant.
var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrOrderNotFound      = errors.New("order not found")
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindAuthorization
	KindNotFound
	KindRateLimited
)

// KindOf classifies an error returned by this package.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidIdentifier),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidItemList),
		errors.Is(err, ErrInvalidCustomization),
		errors.Is(err, ErrInvalidOrderType),
		errors.Is(err, ErrInvalidStatus):
		return KindValidation
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrTableOccupied),
		errors.Is(err, ErrTableInactive),
		errors.Is(err, ErrTableCapacity),
		errors.Is(err, ErrAlreadyAtAnotherTable),
		errors.Is(err, ErrSessionClosed),
		errors.Is(err, ErrSessionAlreadyClosed),
		errors.Is(err, ErrSessionExpired),
		errors.Is(err, ErrSessionPendingClosure),
		errors.Is(err, ErrQuantityLimitExceeded),
		errors.Is(err, ErrItemUnavailable),
		errors.Is(err, ErrInvalidStatusTransition),
		errors.Is(err, ErrStaleStatus):
		return KindConflict
	case errors.Is(err, ErrNotAuthorized):
		return KindAuthorization
	case errors.Is(err, ErrRestaurantNotFound),
		errors.Is(err, ErrTableNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrOrderNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}
