package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Field is a whitelisted, typed accessor for one record field.
type Field[T any] struct {
	name  string
	get   func(*T) (json.RawMessage, error)
	set   func(*T, json.RawMessage) error
	clear func(*T)
	equal func(*T, json.RawMessage) (bool, error)
}

// Codec converts a field value of type V to and from JSON.
type Codec[V any] struct {
	Decode func(json.RawMessage) (V, error)
	Encode func(V) (json.RawMessage, error)
	Equal  func(a, b V) bool
}

// NewField registers a field under name. The path "/<name>" resolves to it,
// compared case-insensitively. Removing the field stores the zero value of V.
func NewField[T, V any](name string, codec Codec[V], get func(*T) V, set func(*T, V)) Field[T] {
	decode := func(raw json.RawMessage) (V, error) {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			var zero V
			return zero, fmt.Errorf("%w: %s cannot be null", ErrTypeMismatch, name)
		}
		v, err := codec.Decode(raw)
		if err != nil {
			var zero V
			return zero, fmt.Errorf("%w: %s: %v", ErrTypeMismatch, name, err)
		}
		return v, nil
	}

	return Field[T]{
		name: name,
		get: func(rec *T) (json.RawMessage, error) {
			return codec.Encode(get(rec))
		},
		set: func(rec *T, raw json.RawMessage) error {
			v, err := decode(raw)
			if err != nil {
				return err
			}
			set(rec, v)
			return nil
		},
		clear: func(rec *T) {
			var zero V
			set(rec, zero)
		},
		equal: func(rec *T, raw json.RawMessage) (bool, error) {
			v, err := decode(raw)
			if err != nil {
				return false, err
			}
			return codec.Equal(get(rec), v), nil
		},
	}
}

// String accepts JSON strings only.
var String = Codec[string]{
	Decode: func(raw json.RawMessage) (string, error) {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	},
	Encode: func(s string) (json.RawMessage, error) { return json.Marshal(s) },
	Equal:  func(a, b string) bool { return a == b },
}

// Decimal accepts a JSON number or a numeric string and keeps exact precision.
var Decimal = Codec[decimal.Decimal]{
	Decode: func(raw json.RawMessage) (decimal.Decimal, error) {
		var d decimal.Decimal
		err := d.UnmarshalJSON(raw)
		return d, err
	},
	Encode: func(d decimal.Decimal) (json.RawMessage, error) {
		return json.RawMessage(d.String()), nil
	},
	Equal: func(a, b decimal.Decimal) bool { return a.Equal(b) },
}

// timeLayouts are tried in order; layouts without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Timestamp accepts a JSON string holding an RFC 3339 timestamp, a zone-less
// timestamp or a bare date.
var Timestamp = Codec[time.Time]{
	Decode: func(raw json.RawMessage) (time.Time, error) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, err
		}
		return ParseTime(s)
	},
	Encode: func(t time.Time) (json.RawMessage, error) {
		return json.Marshal(t.UTC().Format(time.RFC3339Nano))
	},
	Equal: func(a, b time.Time) bool { return a.Equal(b) },
}

// ParseTime parses s with the layouts accepted by Timestamp.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", s)
}
