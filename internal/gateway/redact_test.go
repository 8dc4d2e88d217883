package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedact_BlanksCardDataAtAnyDepth(t *testing.T) {
	body := []byte(`{
		"Credentials": {"CompanyID": "1234", "APIKey": "private"},
		"CardNumber": "4580123456789012",
		"CVV": "123",
		"Amount": 10.5,
		"PaymentMethod": {
			"CreditCard_Number": "4580123456789012",
			"CreditCard_CVV": "123",
			"CreditCard_ExpirationMonth": "12",
			"CreditCard_CitizenID": "012345678"
		},
		"Items": [{"Item": {"Name": "Mug"}, "Token": "abc"}]
	}`)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(Redact(body)), &out))

	assert.Equal(t, "****", out["CardNumber"])
	assert.Equal(t, "****", out["CVV"])
	assert.Equal(t, "1234", out["Credentials"].(map[string]interface{})["CompanyID"])
	assert.Equal(t, "****", out["Credentials"].(map[string]interface{})["APIKey"])
	assert.Equal(t, 10.5, out["Amount"])

	pm := out["PaymentMethod"].(map[string]interface{})
	for _, k := range []string{"CreditCard_Number", "CreditCard_CVV", "CreditCard_ExpirationMonth", "CreditCard_CitizenID"} {
		assert.Equal(t, "****", pm[k], k)
	}

	item := out["Items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "****", item["Token"])
	assert.Equal(t, "Mug", item["Item"].(map[string]interface{})["Name"])
}

func TestRedact_NonJSONIsNeverEchoed(t *testing.T) {
	assert.Equal(t, "[non-JSON body omitted]", Redact([]byte("CardNumber=4580123456789012")))
	assert.Equal(t, "", Redact(nil))
}

func TestRedact_LeavesEmptyValuesAlone(t *testing.T) {
	assert.JSONEq(t, `{"CVV":"","Token":null}`, Redact([]byte(`{"CVV":"","Token":null}`)))
}
