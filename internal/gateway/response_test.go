package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_SucceededNeedsBothChecks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"numeric status and data success", `{"Status":0,"Data":{"Success":true}}`, true},
		{"string success status", `{"Status":"Success","Data":{"Success":true}}`, true},
		{"business decline", `{"Status":0,"Data":{"Success":false,"ResultDescription":"Card declined"}}`, false},
		{"error status", `{"Status":1,"Data":{"Success":true}}`, false},
		{"missing data", `{"Status":0}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Response
			require.NoError(t, json.Unmarshal([]byte(tt.body), &r))
			assert.Equal(t, tt.want, r.Succeeded())
		})
	}
}

func TestResponse_ErrorMessagePrecedence(t *testing.T) {
	var r Response
	require.NoError(t, json.Unmarshal([]byte(`{"Status":0,"UserErrorMessage":"General","Data":{"Success":false,"ResultDescription":"Card declined"}}`), &r))
	assert.Equal(t, "Card declined", r.ErrorMessage("Payment failed"))

	r.Data.ResultDescription = ""
	assert.Equal(t, "General", r.ErrorMessage("Payment failed"))

	r.UserErrorMessage = ""
	assert.Equal(t, "Payment failed", r.ErrorMessage("Payment failed"))

	var nilResp *Response
	assert.Equal(t, "Payment failed", nilResp.ErrorMessage("Payment failed"))
}

func TestResponse_Payload(t *testing.T) {
	r := &Response{Raw: []byte(`{"Status":0,"Data":{"TransactionID":"T1"}}`)}
	payload := r.Payload()
	require.NotNil(t, payload)
	assert.Equal(t, "T1", payload["Data"].(map[string]interface{})["TransactionID"])
}
