package provider

import (
	"bytes"
	"encoding/json"

	"github.com/rhuss/trichat/pkg/jsonpath"
)

// ExtractText returns the string found at path in a JSON response body.
// When the path does not resolve to a string the whole response is returned
// as compact JSON text, and a body that is not JSON at all is returned as is.
func ExtractText(body []byte, path string) string {
	doc, err := jsonpath.Decode(body)
	if err != nil {
		return string(body)
	}
	if text, ok := jsonpath.GetString(doc, path); ok {
		return text
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return string(body)
	}
	return buf.String()
}
