package forms

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Choice holds the raw value of a select field such as category_id. It decodes
// from a JSON string, number or null, and keeps any other JSON value verbatim,
// so malformed input reaches Validate and is reported against its field
// instead of failing the whole body.
type Choice string

func (c *Choice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Choice(s)
	default:
		*c = Choice(data)
	}
	return nil
}

func (c Choice) trimmed() string {
	return strings.TrimSpace(string(c))
}
