package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	wrapped := ErrNoResponse.Wrap(errors.New("dial tcp: i/o timeout"))
	chained := fmt.Errorf("charge order 17: %w", wrapped)

	assert.True(t, errors.Is(chained, ErrNoResponse))
	assert.False(t, errors.Is(chained, ErrMalformedResponse))
	assert.True(t, IsTransport(chained))
	assert.Equal(t, "TRANSPORT_NO_RESPONSE", Code(chained))
	assert.Equal(t, "No response from payment gateway", Message(chained, "fallback"))
	assert.Contains(t, chained.Error(), "i/o timeout")
}

func TestDomainError_WithMessageKeepsCode(t *testing.T) {
	declined := ErrGatewayDeclined.WithMessage("Card declined")

	assert.True(t, errors.Is(declined, ErrGatewayDeclined))
	assert.Equal(t, "Card declined", declined.Error())
	assert.Equal(t, "Payment failed", ErrGatewayDeclined.Message)
}

func TestMessage_FallbackForPlainErrors(t *testing.T) {
	assert.Equal(t, "fallback", Message(errors.New("boom"), "fallback"))
	assert.Equal(t, "", Code(errors.New("boom")))
}
