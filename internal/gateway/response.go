package gateway

import (
	"encoding/json"
	"strings"

	"sumitpay/internal/models"
)

// StatusCode is the top-level Status field. The API reports it as 0 on the
// payment endpoints and as "Success" on the administrative ones.
type StatusCode string

func (s *StatusCode) UnmarshalJSON(data []byte) error {
	var f models.FlexString
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*s = StatusCode(f)
	return nil
}

// OK reports whether the status denotes success.
func (s StatusCode) OK() bool {
	return s == "0" || strings.EqualFold(string(s), "success")
}

// Response is the decoded gateway envelope. Raw keeps the exact body for the
// audit column.
type Response struct {
	Status                StatusCode    `json:"Status"`
	UserErrorMessage      string        `json:"UserErrorMessage"`
	TechnicalErrorDetails string        `json:"TechnicalErrorDetails"`
	Data                  *ResponseData `json:"Data"`
	Raw                   []byte        `json:"-"`
}

// ResponseData is the union of the Data blocks returned by the charge,
// refund, and tokenization endpoints.
type ResponseData struct {
	Success           bool              `json:"Success"`
	ResultDescription string            `json:"ResultDescription"`
	TransactionID     models.FlexString `json:"TransactionID"`
	DocumentID        models.FlexString `json:"DocumentID"`
	CustomerID        models.FlexString `json:"CustomerID"`
	AuthNumber        models.FlexString `json:"AuthNumber"`
	Last4Digits       models.FlexString `json:"Last4Digits"`
	RefundID          models.FlexString `json:"RefundID"`

	CardToken       string            `json:"CardToken"`
	CardPattern     string            `json:"CardPattern"`
	Brand           models.FlexString `json:"Brand"`
	ExpirationMonth models.FlexString `json:"ExpirationMonth"`
	ExpirationYear  models.FlexString `json:"ExpirationYear"`
	CitizenID       models.FlexString `json:"CitizenID"`
}

// StatusOK checks only the top-level status.
func (r *Response) StatusOK() bool {
	return r != nil && r.Status.OK()
}

// Succeeded requires both the top-level status and Data.Success. A 200 with
// a business failure is a decline.
func (r *Response) Succeeded() bool {
	return r.StatusOK() && r.Data != nil && r.Data.Success
}

// ErrorMessage returns the most specific human-readable failure text.
func (r *Response) ErrorMessage(fallback string) string {
	if r == nil {
		return fallback
	}
	if r.Data != nil && r.Data.ResultDescription != "" {
		return r.Data.ResultDescription
	}
	if r.UserErrorMessage != "" {
		return r.UserErrorMessage
	}
	return fallback
}

// Payload decodes the raw body into a generic map for storage.
func (r *Response) Payload() models.JSON {
	if r == nil || len(r.Raw) == 0 {
		return nil
	}
	var out models.JSON
	if err := json.Unmarshal(r.Raw, &out); err != nil {
		return nil
	}
	return out
}
