package model

import "fmt"

// ErrorKind classifies a domain error so callers can map it to their own
// presentation layer without parsing message strings.
type ErrorKind string

const (
	// KindNotFound means a referenced entity does not exist.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindInvalidReference means an identifier is malformed, as opposed to
	// well-formed but absent.
	KindInvalidReference ErrorKind = "INVALID_REFERENCE"

	// KindInvalidState means the operation is not legal given the current
	// state of the entity (unavailable vehicle, exhausted promotion, ...).
	KindInvalidState ErrorKind = "INVALID_STATE"

	// KindValidationFailed means the input shape or range is invalid.
	KindValidationFailed ErrorKind = "VALIDATION_FAILED"

	// KindConflict means a uniqueness constraint was violated.
	KindConflict ErrorKind = "CONFLICT"
)

// DomainError is a business-rule failure with a programmatic kind and code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NotFoundError reports an absent entity of the given name.
func NotFoundError(entity string) *DomainError {
	return NewDomainError(KindNotFound, ErrCodeNotFound, fmt.Sprintf("%s not found", entity))
}

// Standard error codes carried on DomainError and in API responses.
const (
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidReference   = "INVALID_REFERENCE"
	ErrCodeVehicleUnavailable = "VEHICLE_UNAVAILABLE"
	ErrCodeNotCancellable     = "NOT_CANCELLABLE"
	ErrCodeUsageLimitReached  = "USAGE_LIMIT_REACHED"
	ErrCodeNotApplicable      = "PROMO_NOT_APPLICABLE"
	ErrCodePromoInactive      = "PROMO_INACTIVE"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeDuplicateCode      = "DUPLICATE_PROMO_CODE"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// Common domain errors.
var (
	ErrInvalidReference   = NewDomainError(KindInvalidReference, ErrCodeInvalidReference, "identifier is not a valid UUID")
	ErrVehicleUnavailable = NewDomainError(KindInvalidState, ErrCodeVehicleUnavailable, "vehicle is not available for sale")
	ErrNotCancellable     = NewDomainError(KindInvalidState, ErrCodeNotCancellable, "order can no longer be cancelled")
	ErrUsageLimitReached  = NewDomainError(KindInvalidState, ErrCodeUsageLimitReached, "promotion usage limit reached")
	ErrPromoNotApplicable = NewDomainError(KindInvalidState, ErrCodeNotApplicable, "promo code does not apply to this vehicle")
	ErrPromoInactive      = NewDomainError(KindInvalidState, ErrCodePromoInactive, "promotion is not currently active")
	ErrDuplicatePromoCode = NewDomainError(KindConflict, ErrCodeDuplicateCode, "promo code already exists")
	ErrDuplicateEmail     = NewDomainError(KindConflict, ErrCodeDuplicateEmail, "email address already registered")
	ErrInvalidCredentials = NewDomainError(KindValidationFailed, ErrCodeUnauthorised, "invalid email or password")
)

// ValidationError reports an input shape or range violation.
func ValidationError(message string) *DomainError {
	return NewDomainError(KindValidationFailed, ErrCodeValidation, message)
}

// InvalidStatusError reports a status value outside the allowed enum.
func InvalidStatusError(status string) *DomainError {
	return NewDomainError(KindValidationFailed, ErrCodeInvalidStatus, fmt.Sprintf("invalid status: %s", status))
}

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
