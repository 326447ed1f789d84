package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RegistrationID is the server id of a prior registration. The zero value
// means "not registered yet" and travels as JSON false, matching the
// registration-response endpoints.
type RegistrationID int

// Known reports whether a prior registration exists.
func (id RegistrationID) Known() bool {
	return id > 0
}

// MarshalJSON emits false for an unknown id and the integer otherwise.
func (id RegistrationID) MarshalJSON() ([]byte, error) {
	if !id.Known() {
		return []byte("false"), nil
	}
	return []byte(strconv.Itoa(int(id))), nil
}

// UnmarshalJSON accepts false, null, integers and numeric strings.
func (id *RegistrationID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "", "null", "false":
		*id = 0
		return nil
	case "true":
		return fmt.Errorf("model: registration_id cannot be true")
	}

	var raw json.Number
	if bytes.HasPrefix(trimmed, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("model: decode registration_id: %w", err)
		}
		if s == "" {
			*id = 0
			return nil
		}
		raw = json.Number(s)
	} else {
		raw = json.Number(trimmed)
	}

	value, err := raw.Int64()
	if err != nil {
		return fmt.Errorf("model: decode registration_id %q: %w", string(trimmed), err)
	}
	if value < 0 {
		value = 0
	}
	*id = RegistrationID(value)
	return nil
}
