package httputil

import (
	"bytes"

	"github.com/goccy/go-json"
)

// OptionalString tells an absent JSON field apart from an explicit null,
// for PATCH bodies:
//   - Present=false: field absent (leave unchanged)
//   - Present=true, Value=nil: explicit null (reset to default)
//   - Present=true, Value!=nil: new value
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the field is present.
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

// Resolve returns the pointer to apply: nil when absent, def when null.
func (o OptionalString) Resolve(def string) *string {
	if !o.Present {
		return nil
	}
	if o.Value == nil {
		return &def
	}
	return o.Value
}
