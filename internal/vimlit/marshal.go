package vimlit

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	indentStep = "  "

	// Lists of scalars stay on one line when every string is shorter than this.
	inlineStringMax = 40
	// Dicts stay on one line when their entries total less than this.
	inlineDictMax = 60
)

// Marshaler is implemented by types that know their literal form.
type Marshaler interface {
	MarshalLiteral() (Value, error)
}

// UnsupportedTypeError is returned by Marshal for values the format cannot
// express.
type UnsupportedTypeError struct {
	Type   string
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("vimlit: unsupported type %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("vimlit: unsupported type %s", e.Type)
}

// Marshal renders v as literal text. v may be a Value, a Marshaler or a
// native Go value: nil, bool, integers, floats, strings, *string (nil
// renders as the empty string), slices and arrays. Maps are rejected since
// their key order is not stable; build a Dict instead.
func Marshal(v any) (string, error) {
	val, err := ToValue(v)
	if err != nil {
		return "", err
	}
	return render(val, ""), nil
}

// ToValue converts a native Go value into a Value tree.
func ToValue(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return checkValue(v)
	case Marshaler:
		val, err := v.MarshalLiteral()
		if err != nil {
			return nil, err
		}
		return checkValue(val)
	case *string:
		if v == nil {
			return String(""), nil
		}
		return String(*v), nil
	}
	return reflectValue(reflect.ValueOf(v))
}

func checkValue(v Value) (Value, error) {
	if err := validate(v); err != nil {
		return nil, err
	}
	if v == nil {
		return Null{}, nil
	}
	return v, nil
}

func validate(v Value) error {
	switch v := v.(type) {
	case Float:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return &UnsupportedTypeError{Type: "float", Reason: "NaN and infinities have no literal form"}
		}
	case List:
		for _, item := range v {
			if err := validate(item); err != nil {
				return err
			}
		}
	case Dict:
		seen := make(map[string]bool, len(v))
		for _, e := range v {
			if seen[e.Key] {
				return &UnsupportedTypeError{Type: "dict", Reason: fmt.Sprintf("duplicate key %q", e.Key)}
			}
			seen[e.Key] = true
			if err := validate(e.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func reflectValue(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, &UnsupportedTypeError{Type: rv.Type().String(), Reason: "value overflows int64"}
		}
		return Int(u), nil
	case reflect.Float32, reflect.Float64:
		return checkValue(Float(rv.Float()))
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		list := make(List, rv.Len())
		for i := range list {
			item, err := ToValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			list[i] = item
		}
		return list, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return ToValue(rv.Elem().Interface())
	case reflect.Invalid:
		return Null{}, nil
	}
	return nil, &UnsupportedTypeError{Type: rv.Type().String()}
}

func render(v Value, indent string) string {
	switch v := v.(type) {
	case Null:
		return "v:null"
	case Bool:
		if v {
			return "v:true"
		}
		return "v:false"
	case Int:
		return strconv.FormatInt(int64(v), 10)
	case Float:
		return formatFloat(float64(v))
	case String:
		return quote(string(v))
	case List:
		return renderList(v, indent)
	case Dict:
		return renderDict(v, indent)
	}
	return "v:null"
}

// formatFloat uses the shortest representation that parses back to f and
// always marks it as a float: 1.0, 3.14, 1e+16, 1e-05.
func formatFloat(f float64) string {
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func quote(s string) string {
	if strings.Contains(s, "\n") {
		return `"` + EscapeDoubleQuoted(s) + `"`
	}
	return "'" + EscapeSingleQuoted(s) + "'"
}

// EscapeSingleQuoted doubles every apostrophe. Nothing else is escaped.
func EscapeSingleQuoted(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// EscapeDoubleQuoted escapes backslashes, then double quotes, then newlines.
func EscapeDoubleQuoted(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

func isInlineItem(v Value) bool {
	switch v := v.(type) {
	case Bool, Int, Float:
		return true
	case String:
		return utf8.RuneCountInString(string(v)) < inlineStringMax && !strings.Contains(string(v), "\n")
	}
	return false
}

func renderList(l List, indent string) string {
	if len(l) == 0 {
		return "[]"
	}
	inner := indent + indentStep
	items := make([]string, len(l))
	inline := true
	for i, item := range l {
		items[i] = render(item, inner)
		inline = inline && isInlineItem(item)
	}
	if inline {
		return "[" + strings.Join(items, ", ") + "]"
	}
	return block("[", "]", items, indent)
}

func renderDict(d Dict, indent string) string {
	if len(d) == 0 {
		return "{}"
	}
	inner := indent + indentStep
	entries := make([]string, len(d))
	total := 0
	multiline := false
	for i, e := range d {
		entries[i] = quote(e.Key) + ": " + render(e.Value, inner)
		total += utf8.RuneCountInString(entries[i])
		multiline = multiline || strings.Contains(entries[i], "\n")
	}
	if total < inlineDictMax && !multiline {
		return "{" + strings.Join(entries, ", ") + "}"
	}
	return block("{", "}", entries, indent)
}

func block(opening, closing string, items []string, indent string) string {
	var b strings.Builder
	b.WriteString(opening)
	b.WriteByte('\n')
	for _, item := range items {
		b.WriteString(indent)
		b.WriteString(indentStep)
		b.WriteString(item)
		b.WriteString(",\n")
	}
	b.WriteString(indent)
	b.WriteString(closing)
	return b.String()
}
