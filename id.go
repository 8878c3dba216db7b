package todoist

import (
	"encoding/json"
	"errors"
	"strconv"
)

// ErrZeroID is returned by marshalling or unmarshalling JSON when an id is empty (or the number zero).
var ErrZeroID = errors.New("empty id")

// ID identifies a project, task, label or comment. The REST API represents ids as strings, but some endpoints and
// older payloads carry them as JSON numbers. Unmarshalling accepts both forms; marshalling always produces a
// string.
type ID string

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return nil, ErrZeroID
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			return ErrZeroID
		}
		*id = ID(s)
		return nil
	}
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if n == 0 {
		return ErrZeroID
	}
	*id = ID(strconv.FormatInt(n, 10))
	return nil
}

func (id ID) String() string {
	return string(id)
}
