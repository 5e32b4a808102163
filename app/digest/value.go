package digest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// errSkip is returned by element decoders for entries that must be dropped
// from the enclosing list.
var errSkip = errors.New("skip list entry")

// Text is a best-effort textual value. Strings are taken as is, numbers and
// booleans by their JSON spelling. Null, arrays and objects leave it unset.
type Text struct {
	Value string
	Set   bool
}

// NewText makes a set Text.
func NewText(s string) Text { return Text{Value: s, Set: true} }

// Or returns the value if it is set and def otherwise.
func (t Text) Or(def string) string {
	if t.Set {
		return t.Value
	}
	return def
}

// OrIfEmpty returns the value if it is not empty and def otherwise.
func (t Text) OrIfEmpty(def string) string {
	if t.Value != "" {
		return t.Value
	}
	return def
}

// String returns the value, empty when unset.
func (t Text) String() string { return t.Value }

// MarshalJSON writes the value as a string, null when unset.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Set {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = Text{}
	if len(b) == 0 {
		return nil
	}

	switch b[0] {
	case 'n', '[', '{':
		return nil
	case '"':
		if err := json.Unmarshal(b, &t.Value); err != nil {
			return fmt.Errorf("unmarshal text: %w", err)
		}
	default:
		t.Value = string(b)
	}

	t.Set = true
	return nil
}

// List is a one-or-many field: null means empty, a single value is a list of
// one, and null entries or entries of the wrong kind are dropped.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*l = nil
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	raws := []json.RawMessage{b}
	if b[0] == '[' {
		raws = nil
		if err := json.Unmarshal(b, &raws); err != nil {
			return fmt.Errorf("unmarshal list: %w", err)
		}
	}

	res := make(List[T], 0, len(raws))
	for _, raw := range raws {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}

		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.Is(err, errSkip) || errors.As(err, &typeErr) {
				continue
			}
			return fmt.Errorf("unmarshal list entry: %w", err)
		}
		res = append(res, v)
	}

	*l = res
	return nil
}
