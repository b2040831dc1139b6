// Package vimlit reads and writes the literal format used by level
// artifacts: v:null, v:true, v:false, decimal numbers, single- or
// double-quoted strings, [lists] and {'key': value} dicts with ordered keys.
package vimlit

import "fmt"

// Value is one of Null, Bool, Int, Float, String, List or Dict.
type Value interface {
	literal()
}

type (
	Null   struct{}
	Bool   bool
	Int    int64
	Float  float64
	String string
	List   []Value
	Dict   []Entry
)

// Entry is one key of a Dict.
type Entry struct {
	Key   string
	Value Value
}

func (Null) literal()   {}
func (Bool) literal()   {}
func (Int) literal()    {}
func (Float) literal()  {}
func (String) literal() {}
func (List) literal()   {}
func (Dict) literal()   {}

// Get returns the value stored under key.
func (d Dict) Get(key string) (Value, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of an existing key in place or appends a new one.
func (d *Dict) Set(key string, v Value) {
	for i := range *d {
		if (*d)[i].Key == key {
			(*d)[i].Value = v
			return
		}
	}
	*d = append(*d, Entry{Key: key, Value: v})
}

// Keys returns the keys in order.
func (d Dict) Keys() []string {
	keys := make([]string, len(d))
	for i, e := range d {
		keys[i] = e.Key
	}
	return keys
}

// Equal reports whether a and b are the same value. Int and Float are
// distinct, and dict key order matters.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool, Int, Float, String:
		return a == b
	case List:
		bl, ok := b.(List)
		if !ok || len(a) != len(bl) {
			return false
		}
		for i := range a {
			if !Equal(a[i], bl[i]) {
				return false
			}
		}
		return true
	case Dict:
		bd, ok := b.(Dict)
		if !ok || len(a) != len(bd) {
			return false
		}
		for i := range a {
			if a[i].Key != bd[i].Key || !Equal(a[i].Value, bd[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// TypeName names the variant of v for error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case List:
		return "list"
	case Dict:
		return "dict"
	case nil:
		return "nothing"
	}
	return fmt.Sprintf("%T", v)
}
