package errors

import "errors"

var (
	ErrNotConfigured = &DomainError{
		Code:    "CONFIGURATION_ERROR",
		Message: "Payment gateway is not properly configured",
	}
	ErrValidation = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "invalid payment fields",
	}
	ErrNoResponse = &DomainError{
		Code:    "TRANSPORT_NO_RESPONSE",
		Message: "No response from payment gateway",
	}
	ErrMalformedResponse = &DomainError{
		Code:    "TRANSPORT_MALFORMED_RESPONSE",
		Message: "Invalid response from payment gateway",
	}
	ErrGatewayDeclined = &DomainError{
		Code:    "GATEWAY_DECLINED",
		Message: "Payment failed",
	}
	ErrPersistence = &DomainError{
		Code:    "PERSISTENCE_ERROR",
		Message: "payment processed but the record could not be saved",
	}
	ErrDuplicateTransaction = &DomainError{
		Code:    "DUPLICATE_TRANSACTION",
		Message: "gateway transaction already recorded",
	}
)

// IsTransport reports whether err is a no-response or malformed-response
// failure from the gateway.
func IsTransport(err error) bool {
	return errors.Is(err, ErrNoResponse) || errors.Is(err, ErrMalformedResponse)
}
