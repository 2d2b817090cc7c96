package domain

import "errors"

// Not found
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrZoneNotFound     = errors.New("zone not found")
	ErrSeatNotFound     = errors.New("seat not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidTicket    = errors.New("invalid ticket")
)

// Validation
var (
	ErrInvalidCart          = errors.New("invalid cart")
	ErrInsufficientCapacity = errors.New("insufficient zone capacity")
	ErrInvalidSeatStatus    = errors.New("invalid seat status")
	ErrInvalidEventData     = errors.New("invalid event data")
	ErrZoneCapacityExceeded = errors.New("zone capacities exceed event capacity")
	ErrInvalidUserData      = errors.New("invalid user data")
	ErrInvalidImage         = errors.New("invalid image")
)

// Already processed
var (
	ErrAlreadyCheckedIn   = errors.New("ticket already checked in")
	ErrSeatAlreadySold    = errors.New("seat already sold")
	ErrSeatHeld           = errors.New("seat is held")
	ErrEmailAlreadyExists = errors.New("email already registered")
)

// Storage / transaction
var (
	ErrSeatUpdateFailed   = errors.New("seat update failed")
	ErrTransactionFailure = errors.New("transaction failure")
)

// Auth
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user is inactive")
	ErrForbidden          = errors.New("forbidden")
)

// ErrorKind is the coarse classification used at the request boundary
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NotFound"
	KindValidation         ErrorKind = "ValidationError"
	KindAlreadyProcessed   ErrorKind = "AlreadyProcessed"
	KindTransactionFailure ErrorKind = "TransactionFailure"
	KindUnauthorized       ErrorKind = "Unauthorized"
	KindForbidden          ErrorKind = "Forbidden"
)

type classified struct {
	err  error
	kind ErrorKind
	code string
}

// Order matters: a seat update failure joined with ErrSeatAlreadySold is
// AlreadyProcessed, joined with ErrSeatNotFound it is NotFound.
var classification = []classified{
	{ErrAlreadyCheckedIn, KindAlreadyProcessed, "ALREADY_CHECKED_IN"},
	{ErrSeatAlreadySold, KindAlreadyProcessed, "SEAT_ALREADY_SOLD"},
	{ErrSeatHeld, KindAlreadyProcessed, "SEAT_HELD"},
	{ErrEmailAlreadyExists, KindAlreadyProcessed, "EMAIL_ALREADY_EXISTS"},

	{ErrEventNotFound, KindNotFound, "EVENT_NOT_FOUND"},
	{ErrZoneNotFound, KindNotFound, "ZONE_NOT_FOUND"},
	{ErrSeatNotFound, KindNotFound, "SEAT_NOT_FOUND"},
	{ErrUserNotFound, KindNotFound, "USER_NOT_FOUND"},
	{ErrPurchaseNotFound, KindNotFound, "PURCHASE_NOT_FOUND"},
	{ErrCategoryNotFound, KindNotFound, "CATEGORY_NOT_FOUND"},
	{ErrInvalidTicket, KindNotFound, "INVALID_TICKET"},
	{ErrSeatUpdateFailed, KindNotFound, "SEAT_UPDATE_FAILED"},

	{ErrInvalidCart, KindValidation, "INVALID_CART"},
	{ErrInsufficientCapacity, KindValidation, "INSUFFICIENT_CAPACITY"},
	{ErrInvalidSeatStatus, KindValidation, "INVALID_SEAT_STATUS"},
	{ErrInvalidEventData, KindValidation, "INVALID_EVENT_DATA"},
	{ErrZoneCapacityExceeded, KindValidation, "ZONE_CAPACITY_EXCEEDED"},
	{ErrInvalidUserData, KindValidation, "INVALID_USER_DATA"},
	{ErrInvalidImage, KindValidation, "INVALID_IMAGE"},

	{ErrInvalidCredentials, KindUnauthorized, "INVALID_CREDENTIALS"},
	{ErrUserInactive, KindUnauthorized, "USER_INACTIVE"},
	{ErrForbidden, KindForbidden, "FORBIDDEN"},

	{ErrTransactionFailure, KindTransactionFailure, "TRANSACTION_FAILURE"},
}

// KindOf classifies err; anything unrecognised is a TransactionFailure
func KindOf(err error) ErrorKind {
	for _, c := range classification {
		if errors.Is(err, c.err) {
			return c.kind
		}
	}
	return KindTransactionFailure
}

// CodeOf returns the machine-readable code for err
func CodeOf(err error) string {
	for _, c := range classification {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL_ERROR"
}
