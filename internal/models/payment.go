package models

import (
	"github.com/shopspring/decimal"
)

// NewTokenSentinel is the stored-token value meaning "charge with a new card".
const NewTokenSentinel = "new"

// Order is the caller's description of what to charge.
type Order struct {
	OrderID     string          `json:"order_id" validate:"required,max=100"`
	UserID      uint            `json:"-"`
	Total       decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" validate:"required,len=3"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	Description string          `json:"description" validate:"max=255"`
	Items       []OrderItem     `json:"items" validate:"dive"`
	Customer    Customer        `json:"customer"`
	RedirectURL string          `json:"redirect_url" validate:"omitempty,url"`

	// Language is the request locale used when automatic document language
	// is enabled.
	Language string `json:"-"`
	// SubscriptionID marks a recurring charge.
	SubscriptionID uint `json:"-"`
}

// HasDonation reports whether any line item is a donation.
func (o Order) HasDonation() bool {
	for _, it := range o.Items {
		if it.IsDonation {
			return true
		}
	}
	return false
}

// IsRecurring reports whether the order was raised by a subscription cycle.
func (o Order) IsRecurring() bool {
	return o.SubscriptionID != 0
}

type OrderItem struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity" validate:"min=0"`
	CatalogNumber string          `json:"sku,omitempty"`
	IsDonation    bool            `json:"is_donation,omitempty"`
}

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
}

// PaymentMethod carries exactly one of: a stored token (Stored or Token), a
// single-use token, or raw card fields. Raw card fields are never persisted.
type PaymentMethod struct {
	Token          string     `json:"token,omitempty"`
	SingleUseToken string     `json:"single_use_token,omitempty"`
	CardNumber     string     `json:"card_number,omitempty"`
	CVV            string     `json:"cvv,omitempty"`
	ExpMonth       FlexString `json:"exp_month,omitempty"`
	ExpYear        FlexString `json:"exp_year,omitempty"`
	CitizenID      string     `json:"citizen_id,omitempty"`

	// TokenID references a stored PaymentToken by local identifier.
	TokenID uint `json:"token_id,omitempty"`
	// Stored is the resolved token; set by the caller, never decoded from JSON.
	Stored *PaymentToken `json:"-"`
}

type PaymentMethodKind string

const (
	PaymentMethodNone        PaymentMethodKind = "none"
	PaymentMethodStoredToken PaymentMethodKind = "stored_token"
	PaymentMethodSingleUse   PaymentMethodKind = "single_use_token"
	PaymentMethodCard        PaymentMethodKind = "card"
)

// Kind picks the variant by precedence: stored token, single-use token, card.
func (m PaymentMethod) Kind() PaymentMethodKind {
	switch {
	case m.Stored != nil, m.TokenID != 0:
		return PaymentMethodStoredToken
	case m.Token != "" && m.Token != NewTokenSentinel:
		return PaymentMethodStoredToken
	case m.SingleUseToken != "":
		return PaymentMethodSingleUse
	case m.CardNumber != "":
		return PaymentMethodCard
	}
	return PaymentMethodNone
}

// CardLast4 returns the last four digits of whatever card the method carries.
func (m PaymentMethod) CardLast4() string {
	if m.Stored != nil {
		return m.Stored.CardLast4
	}
	if len(m.CardNumber) >= 4 {
		return m.CardNumber[len(m.CardNumber)-4:]
	}
	return ""
}

type ChargeOutcome string

const (
	OutcomeSucceeded       ChargeOutcome = "succeeded"
	OutcomeDeclined        ChargeOutcome = "declined"
	OutcomeTransportFailed ChargeOutcome = "transport_failed"
	OutcomeRejected        ChargeOutcome = "rejected"
)

// ChargeResult is the uniform result of a charge attempt. Err carries the
// typed cause; a non-nil Err with Success=true means the gateway captured the
// payment but the local record could not be written.
type ChargeResult struct {
	Success       bool          `json:"success"`
	TransactionID string        `json:"transaction_id,omitempty"`
	RecordID      uint          `json:"record_id,omitempty"`
	DocumentID    string        `json:"document_id,omitempty"`
	CustomerID    string        `json:"customer_id,omitempty"`
	AuthNumber    string        `json:"auth_number,omitempty"`
	CardLast4     string        `json:"card_last4,omitempty"`
	Error         string        `json:"error,omitempty"`
	Outcome       ChargeOutcome `json:"-"`
	Err           error         `json:"-"`
}

type RefundResult struct {
	Success  bool   `json:"success"`
	RefundID string `json:"refund_id,omitempty"`
	RecordID uint   `json:"record_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Err      error  `json:"-"`
}
