package validation

import (
	"strings"
	"time"

	"sumitpay/internal/config"
	"sumitpay/internal/models"
)

const maxExpiryYears = 20

// RawCardRejected is reported when card fields arrive outside direct mode.
const RawCardRejected = "Raw card data is not accepted in this PCI mode"

// PaymentFields checks a payment method against the PCI mode. Stored tokens
// were validated when they were created and are not checked again. Raw card
// fields are only accepted in direct mode.
func PaymentFields(m models.PaymentMethod, mode config.PCIMode, now time.Time) Errors {
	v := New()
	kind := m.Kind()
	if kind == models.PaymentMethodStoredToken {
		return nil
	}
	if kind == models.PaymentMethodCard && mode != config.PCIModeDirect {
		return Errors{{Field: "card_number", Message: RawCardRejected}}
	}

	switch mode {
	case config.PCIModeDirect:
		v.Check(isDigits(m.CardNumber), "card_number", "Card number is invalid")
		v.Check(isDigits(m.CVV), "cvv", "Card security code is invalid")

		month, ok := m.ExpMonth.Int()
		v.Check(ok && month >= 1 && month <= 12, "exp_month", "Expiration month is invalid")

		year, ok := m.ExpYear.Int()
		current := now.Year()
		v.Check(ok && year >= current && year <= current+maxExpiryYears, "exp_year", "Expiration year is invalid")
	case config.PCIModeTokenized:
		v.Check(strings.TrimSpace(m.SingleUseToken) != "", "single_use_token", "Payment token is required")
	}

	if v.Valid() {
		return nil
	}
	return v.Errors
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
