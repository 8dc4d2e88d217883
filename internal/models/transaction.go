package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

// Transaction statuses
const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// Transaction is an append-only record of one gateway attempt. A refund is a
// new row pointing at the original gateway transaction through
// ParentTransactionID.
type Transaction struct {
	ID                  uint              `gorm:"primarykey" json:"id"`
	UserID              uint              `gorm:"index" json:"user_id,omitempty"`
	OrderID             *string           `gorm:"size:100;index" json:"order_id"`
	Amount              decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency            string            `gorm:"size:3;not null;default:'ILS'" json:"currency"`
	Status              TransactionStatus `gorm:"size:20;not null;index" json:"status"`
	TransactionID       *string           `gorm:"size:100;uniqueIndex" json:"transaction_id"`
	ParentTransactionID *string           `gorm:"size:100;index" json:"parent_transaction_id,omitempty"`
	DocumentID          string            `gorm:"size:100" json:"document_id,omitempty"`
	CustomerID          string            `gorm:"size:100" json:"customer_id,omitempty"`
	AuthNumber          string            `gorm:"size:100" json:"auth_number,omitempty"`
	CardLast4           string            `gorm:"size:4" json:"card_last4,omitempty"`
	CardBrand           string            `gorm:"size:50" json:"card_brand,omitempty"`
	ResponseData        JSON              `gorm:"type:jsonb" json:"response_data,omitempty"`
	ErrorMessage        *string           `gorm:"type:text" json:"error_message,omitempty"`
	ProcessedAt         *time.Time        `json:"processed_at,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "sumit_payment_transactions"
}

// MaskedCardNumber renders the card as ****1234, or "" when unknown.
func (t *Transaction) MaskedCardNumber() string {
	if t.CardLast4 == "" {
		return ""
	}
	return "****" + t.CardLast4
}
