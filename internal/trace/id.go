package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// ID identifies a phase or round. Producers emit either JSON numbers or
// strings for ids, so ID accepts both. Numbers are kept in their shortest
// decimal form, so 1.0 becomes "1" and 1e2 becomes "100".
type ID string

var numericID = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// IntID returns the ID for an integer identifier.
func IntID(n int) ID {
	return ID(strconv.Itoa(n))
}

// String returns the textual form of the id.
func (id ID) String() string {
	return string(id)
}

// IsNumeric reports whether the id was (or looks like) a JSON number.
func (id ID) IsNumeric() bool {
	return numericID.MatchString(string(id))
}

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	if !numericID.Match(data) {
		return fmt.Errorf("decoding id: expected string or number, got %s", data)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	*id = ID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// MarshalJSON writes numeric ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}
