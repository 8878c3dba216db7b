package todoist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// attrs holds the JSON encoding of each attribute set on a patch, keyed by attribute name. Only attributes that
// were explicitly set end up in the request body, which is how the REST API distinguishes "leave alone" from
// "set to zero value".
type attrs map[string]string

func (a attrs) set(key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	a[key] = string(b)
	return nil
}

// str returns the decoded value of a string attribute.
func (a attrs) str(key string) (string, bool) {
	raw, ok := a[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return "", false
	}
	return s, true
}

// marshal writes the attributes as a JSON object with keys in lexical order.
func (a attrs) marshal() []byte {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf := bytes.NewBuffer(nil)
	buf.WriteRune('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteRune(',')
		}
		_, _ = fmt.Fprintf(buf, `%q:%s`, k, a[k])
	}
	buf.WriteRune('}')
	return buf.Bytes()
}
