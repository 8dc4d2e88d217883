package errors

var (
	ErrNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "record not found",
	}
	ErrTokenNotFound = &DomainError{
		Code:    "TOKEN_NOT_FOUND",
		Message: "payment token not found",
	}
	ErrSubscriptionNotFound = &DomainError{
		Code:    "SUBSCRIPTION_NOT_FOUND",
		Message: "subscription not found",
	}
	ErrSubscriptionInactive = &DomainError{
		Code:    "SUBSCRIPTION_INACTIVE",
		Message: "subscription is not active",
	}
	ErrUnknownFrequency = &DomainError{
		Code:    "INVALID_FREQUENCY",
		Message: "unknown billing frequency",
	}
)
