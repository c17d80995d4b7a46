package types

import (
	"fmt"
)

// ToMap converts the request to its map form. Unknown fields are left out.
func (r *TravelRequest) ToMap() map[string]any {
	out := make(map[string]any, len(fieldTable))
	for _, f := range fieldTable {
		if f.isSet(r) {
			out[f.Name] = f.get(r)
		}
	}
	return out
}

// FromMap builds a request from its map form. Missing keys and null values become unknown.
// A confirmed flag only survives when every required field is present.
func FromMap(m map[string]any) (TravelRequest, error) {
	var r TravelRequest
	for key, value := range m {
		f, ok := fieldIndex[key]
		if !ok {
			return TravelRequest{}, fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
		if value == nil {
			continue
		}
		if err := f.set(&r, value); err != nil {
			return TravelRequest{}, fmt.Errorf("field %s: %w", key, err)
		}
	}
	if r.Confirmed {
		r.Confirm()
	}
	return r, nil
}
