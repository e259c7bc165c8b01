package dto

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes a JSON field that is absent from one that is
// null. Set is true once the field appears in the payload.
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		o.Value = ""
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns nil when the field was absent and a pointer to the value
// otherwise; null yields "".
func (o OptionalString) Ptr() *string {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}
