package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

type BillingStatus string

const (
	BillingStatusActive    BillingStatus = "active"
	BillingStatusCancelled BillingStatus = "cancelled"
	BillingStatusSuspended BillingStatus = "suspended"
)

// RecurringBilling is a subscription charged against a stored token. The
// token link becomes NULL when the token is deleted so the billing history
// survives.
type RecurringBilling struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	PaymentTokenID  *uint           `gorm:"index" json:"payment_token_id"`
	PaymentToken    *PaymentToken   `gorm:"foreignKey:PaymentTokenID;constraint:OnDelete:SET NULL" json:"-"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency        string          `gorm:"size:3;not null;default:'ILS'" json:"currency"`
	VATRate         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"vat_rate"`
	Frequency       Frequency       `gorm:"size:20;not null" json:"frequency"`
	Description     string          `gorm:"size:255" json:"description,omitempty"`
	CustomerName    string          `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerEmail   string          `gorm:"size:255" json:"customer_email,omitempty"`
	Status          BillingStatus   `gorm:"size:20;not null;default:'active';index" json:"status"`
	NextPaymentDate *time.Time      `gorm:"index" json:"next_payment_date"`
	LastPaymentDate *time.Time      `json:"last_payment_date"`
	StartedAt       *time.Time      `json:"started_at"`
	EndedAt         *time.Time      `json:"ended_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (RecurringBilling) TableName() string {
	return "sumit_recurring_billings"
}

func (b *RecurringBilling) IsActive() bool {
	return b.Status == BillingStatusActive
}
