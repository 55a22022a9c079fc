package report

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// Kind is the JSON kind of a Value.
type Kind int

const (
	Null   Kind = iota // JSON null or absent
	String             // JSON string
	Number             // JSON number, kept as its literal text
	Bool               // JSON true/false
	Raw                // JSON object or array, kept as compact JSON text
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Raw:
		return "json"
	default:
		return "null"
	}
}

// Value is one cell of a flattened row. The zero Value is Null.
type Value struct {
	kind Kind
	text string
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: String, text: s} }

// NumberValue returns a number Value from its JSON literal (e.g. "10", "0.5").
func NumberValue(literal string) Value { return Value{kind: Number, text: literal} }

// IntValue returns a number Value for n.
func IntValue(n int64) Value { return NumberValue(strconv.FormatInt(n, 10)) }

// BoolValue returns a bool Value.
func BoolValue(b bool) Value { return Value{kind: Bool, text: strconv.FormatBool(b)} }

// RawValue returns an object/array Value from its JSON text.
func RawValue(json string) Value { return Value{kind: Raw, text: json} }

// Kind reports the JSON kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null or absent.
func (v Value) IsNull() bool { return v.kind == Null }

// String returns the CSV cell text for v: strings verbatim, numbers as their
// literal, true/false, empty for null and compact JSON for objects and arrays.
func (v Value) String() string {
	if v.kind == Null {
		return ""
	}
	return v.text
}

// Equal reports whether v and o have the same kind and text.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.String() == o.String()
}

func valueOf(r gjson.Result) Value {
	switch r.Type {
	case gjson.String:
		return StringValue(r.Str)
	case gjson.Number:
		return NumberValue(r.Raw)
	case gjson.True:
		return BoolValue(true)
	case gjson.False:
		return BoolValue(false)
	case gjson.JSON:
		return RawValue(gjson.Get(r.Raw, "@ugly").Raw)
	default:
		return Value{}
	}
}

// describe names the JSON kind of r for error messages.
func describe(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	case r.Type == gjson.True || r.Type == gjson.False:
		return "bool"
	case r.Type == gjson.String:
		return "string"
	case r.Type == gjson.Number:
		return "number"
	default:
		return "null"
	}
}
