package payment

import (
	"encoding/json"

	"sumitpay/internal/config"
	"sumitpay/internal/gateway"
	"sumitpay/internal/models"

	"github.com/shopspring/decimal"
)

// DocumentTypeDonationReceipt replaces the default invoice when an order
// carries donation items.
const DocumentTypeDonationReceipt = "DonationReceipt"

// ChargeRequest is the body of a charge. Boolean options are sent as the
// strings "true" and "false".
type ChargeRequest struct {
	Credentials           gateway.Credentials  `json:"Credentials"`
	Items                 []ChargeItem         `json:"Items"`
	VATIncluded           string               `json:"VATIncluded"`
	VATRate               json.Number          `json:"VATRate"`
	Customer              ChargeCustomer       `json:"Customer"`
	AuthoriseOnly         string               `json:"AuthoriseOnly"`
	DraftDocument         string               `json:"DraftDocument"`
	SendDocumentByEmail   string               `json:"SendDocumentByEmail"`
	UpdateCustomerByEmail string               `json:"UpdateCustomerByEmail,omitempty"`
	DocumentDescription   string               `json:"DocumentDescription"`
	PaymentsCount         string               `json:"Payments_Count"`
	MaximumPayments       int                  `json:"MaximumPayments"`
	DocumentLanguage      string               `json:"DocumentLanguage"`
	DocumentType          string               `json:"DocumentType,omitempty"`
	MerchantNumber        string               `json:"MerchantNumber,omitempty"`
	AutoCapture           string               `json:"AutoCapture,omitempty"`
	AuthorizeAmount       json.Number          `json:"AuthorizeAmount,omitempty"`
	PaymentMethod         *ChargePaymentMethod `json:"PaymentMethod,omitempty"`
	SingleUseToken        string               `json:"SingleUseToken,omitempty"`
	RedirectURL           string               `json:"RedirectURL,omitempty"`
}

type ChargeItem struct {
	Name              string      `json:"Name"`
	Price             json.Number `json:"Price"`
	Quantity          int         `json:"Quantity"`
	IsPriceIncludeVAT bool        `json:"IsPriceIncludeVAT"`
	CatalogNumber     string      `json:"CatalogNumber,omitempty"`
	IsDonation        bool        `json:"IsDonation,omitempty"`
}

// ChargeCustomer always carries every field; absent values are "".
type ChargeCustomer struct {
	Name    string `json:"Name"`
	Email   string `json:"Email"`
	Phone   string `json:"Phone"`
	Address string `json:"Address"`
	City    string `json:"City"`
	Country string `json:"Country"`
	ZipCode string `json:"ZipCode"`
}

// ChargePaymentMethod holds either a stored token or raw card fields.
type ChargePaymentMethod struct {
	Token                     string `json:"Token,omitempty"`
	CreditCardNumber          string `json:"CreditCard_Number,omitempty"`
	CreditCardCVV             string `json:"CreditCard_CVV,omitempty"`
	CreditCardExpirationMonth string `json:"CreditCard_ExpirationMonth,omitempty"`
	CreditCardExpirationYear  string `json:"CreditCard_ExpirationYear,omitempty"`
	CreditCardCitizenID       string `json:"CreditCard_CitizenID,omitempty"`
}

type refundRequest struct {
	Credentials   gateway.Credentials `json:"Credentials"`
	TransactionID string              `json:"TransactionID"`
	Amount        json.Number         `json:"Amount"`
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// AuthorizeAmount raises base by addedPercent, then to base+minimumAddition
// when the percentage adds less than that. The result is rounded half-up to
// two decimals.
func AuthorizeAmount(base, addedPercent, minimumAddition decimal.Decimal) decimal.Decimal {
	amount := base
	if addedPercent.IsPositive() {
		factor := decimal.NewFromInt(1).Add(addedPercent.Div(decimal.NewFromInt(100)))
		amount = base.Mul(factor)
	}
	if minimumAddition.IsPositive() && amount.Sub(base).LessThan(minimumAddition) {
		amount = base.Add(minimumAddition)
	}
	return amount.Round(2)
}

func (s *service) BuildChargeRequest(order models.Order, method models.PaymentMethod, installments int) ChargeRequest {
	if installments < 1 {
		installments = 1
	}
	pc := s.cfg.Payment

	req := ChargeRequest{
		Credentials: gateway.Credentials{
			CompanyID: s.cfg.Credentials.CompanyID,
			APIKey:    s.cfg.Credentials.APIKey,
		},
		Items:               buildItems(order.Items),
		VATIncluded:         "true",
		VATRate:             json.Number(order.VATRate.String()),
		Customer:            buildCustomer(order.Customer),
		AuthoriseOnly:       boolString(pc.TestingMode),
		DraftDocument:       boolString(pc.DraftDocument),
		SendDocumentByEmail: boolString(pc.EmailDocument),
		DocumentDescription: order.Description,
		PaymentsCount:       itoa(installments),
		MaximumPayments:     pc.MaxInstallments,
		DocumentLanguage:    s.documentLanguage(order),
		MerchantNumber:      pc.MerchantNumber,
	}

	if s.cfg.Features.Donations && order.HasDonation() {
		req.DocumentType = DocumentTypeDonationReceipt
	}

	if order.IsRecurring() {
		req.UpdateCustomerByEmail = "true"
		req.MerchantNumber = pc.SubscriptionMerchantNumber
	} else if pc.AuthorizeOnly {
		req.AutoCapture = "false"
		req.AuthorizeAmount = money(AuthorizeAmount(order.Total, pc.AuthorizeAddedPercent, pc.AuthorizeMinimumAddition))
	}

	switch method.Kind() {
	case models.PaymentMethodStoredToken:
		token := method.Token
		if method.Stored != nil {
			token = method.Stored.Token
		}
		req.PaymentMethod = &ChargePaymentMethod{Token: token}
	case models.PaymentMethodSingleUse:
		req.SingleUseToken = method.SingleUseToken
	case models.PaymentMethodCard:
		if pc.PCIMode != config.PCIModeDirect {
			break
		}
		req.PaymentMethod = &ChargePaymentMethod{
			CreditCardNumber:          method.CardNumber,
			CreditCardCVV:             method.CVV,
			CreditCardExpirationMonth: method.ExpMonth.String(),
			CreditCardExpirationYear:  method.ExpYear.String(),
			CreditCardCitizenID:       method.CitizenID,
		}
	}

	if pc.PCIMode == config.PCIModeRedirect && order.RedirectURL != "" {
		req.RedirectURL = order.RedirectURL
	}
	return req
}

func buildItems(items []models.OrderItem) []ChargeItem {
	out := make([]ChargeItem, 0, len(items))
	for _, it := range items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		out = append(out, ChargeItem{
			Name:              it.Name,
			Price:             money(it.Price),
			Quantity:          qty,
			IsPriceIncludeVAT: true,
			CatalogNumber:     it.CatalogNumber,
			IsDonation:        it.IsDonation,
		})
	}
	return out
}

func buildCustomer(c models.Customer) ChargeCustomer {
	return ChargeCustomer{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		City:    c.City,
		Country: c.Country,
		ZipCode: c.ZipCode,
	}
}

func (s *service) documentLanguage(order models.Order) string {
	if s.cfg.Documents.AutoLanguage && order.Language != "" {
		return order.Language
	}
	return s.cfg.Documents.DefaultLanguage
}
