package gateway

import (
	"bytes"
	"encoding/json"
	"strings"
)

const redacted = "****"

// sensitiveKeys are blanked wherever they appear in a logged body.
var sensitiveKeys = map[string]struct{}{
	"CardNumber":     {},
	"CVV":            {},
	"CitizenID":      {},
	"CardToken":      {},
	"Token":          {},
	"SingleUseToken": {},
	"APIKey":         {},
	"APIPublicKey":   {},
}

// Redact returns body with card data, tokens, and keys blanked. Every
// CreditCard_* field is blanked too. A body that is not JSON is never echoed.
func Redact(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "[non-JSON body omitted]"
	}
	out, err := json.Marshal(redactValue(v))
	if err != nil {
		return "[body omitted]"
	}
	return string(out)
}

func redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			if isSensitive(k) {
				if val != nil && val != "" {
					t[k] = redacted
				}
				continue
			}
			t[k] = redactValue(val)
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = redactValue(t[i])
		}
		return t
	}
	return v
}

func isSensitive(key string) bool {
	if _, ok := sensitiveKeys[key]; ok {
		return true
	}
	return strings.HasPrefix(key, "CreditCard_")
}
