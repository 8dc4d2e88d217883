package models

import (
	"fmt"
	"time"
)

// PaymentToken is a reusable gateway card token. Token and CitizenID hold
// plaintext in memory only; the repository seals them into the *Ciphertext
// columns.
type PaymentToken struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	UserID              uint      `gorm:"not null;index" json:"user_id"`
	Token               string    `gorm:"-" json:"-"`
	TokenCiphertext     string    `gorm:"column:token;type:text;not null" json:"-"`
	CardType            string    `gorm:"size:20;default:'card'" json:"card_type"`
	CardLast4           string    `gorm:"size:4;not null" json:"card_last4"`
	CardBrand           string    `gorm:"size:50" json:"card_brand"`
	ExpMonth            int       `gorm:"not null" json:"exp_month"`
	ExpYear             int       `gorm:"not null" json:"exp_year"`
	CitizenID           string    `gorm:"-" json:"-"`
	CitizenIDCiphertext string    `gorm:"column:citizen_id;type:text" json:"-"`
	IsDefault           bool      `gorm:"default:false;index" json:"is_default"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (PaymentToken) TableName() string {
	return "sumit_payment_tokens"
}

// MaskedCardNumber renders the card as ****1234.
func (t *PaymentToken) MaskedCardNumber() string {
	return "****" + t.CardLast4
}

// FormattedExpiration renders the expiry as MM/YYYY.
func (t *PaymentToken) FormattedExpiration() string {
	return fmt.Sprintf("%02d/%d", t.ExpMonth, t.ExpYear)
}

// IsExpired compares the expiry period against asOf's year and month. A card
// stays valid through the whole of its expiry month.
func (t *PaymentToken) IsExpired(asOf time.Time) bool {
	year, month := asOf.Year(), int(asOf.Month())
	return t.ExpYear < year || (t.ExpYear == year && t.ExpMonth < month)
}

// PaymentTokenView is the public shape of a stored token.
type PaymentTokenView struct {
	ID         uint      `json:"id"`
	CardBrand  string    `json:"card_brand"`
	CardType   string    `json:"card_type"`
	CardNumber string    `json:"card_number"`
	Expiration string    `json:"expiration"`
	IsDefault  bool      `json:"is_default"`
	IsExpired  bool      `json:"is_expired"`
	CreatedAt  time.Time `json:"created_at"`
}

func (t *PaymentToken) View(asOf time.Time) PaymentTokenView {
	return PaymentTokenView{
		ID:         t.ID,
		CardBrand:  t.CardBrand,
		CardType:   t.CardType,
		CardNumber: t.MaskedCardNumber(),
		Expiration: t.FormattedExpiration(),
		IsDefault:  t.IsDefault,
		IsExpired:  t.IsExpired(asOf),
		CreatedAt:  t.CreatedAt,
	}
}
