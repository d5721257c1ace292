package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString tracks presence and value for partial updates:
//   - Present=false: field absent from JSON (don't change)
//   - Present=true, Value=nil: field is JSON null
//   - Present=true, Value=&"": field is empty string
//   - Present=true, Value=&"text": field has value
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the key is present in the JSON object.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Cleared reports a present field that is null or empty.
func (o OptionalString) Cleared() bool {
	return o.Present && (o.Value == nil || *o.Value == "")
}

// String returns the value or "" when absent or null.
func (o OptionalString) String() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}

// Set builds a present OptionalString, mostly for tests and internal callers.
func Set(s string) OptionalString {
	return OptionalString{Present: true, Value: &s}
}
