package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice stores an ordered list of strings as a JSON text column.
type StringSlice []string

func (s *StringSlice) Scan(src any) error {
	if src == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return s.parseFromString(v)
	case []byte:
		return s.parseFromString(string(v))
	default:
		return fmt.Errorf("StringSlice: unsupported Scan type %T", src)
	}
}

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("StringSlice: marshal: %w", err)
	}
	return string(raw), nil
}

func (s *StringSlice) parseFromString(raw string) error {
	if raw == "" {
		*s = StringSlice{}
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fmt.Errorf("StringSlice: parse %q: %w", raw, err)
	}
	*s = StringSlice(out)
	return nil
}
