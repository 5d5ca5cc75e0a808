package value

import (
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Kind Type
// --------------------------------------------------------------------------

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Value Type (tagged variant)
// --------------------------------------------------------------------------

// Value is a structured-data value: one of null, bool, number, string,
// array or object. The zero Value is Null. Values are cheap to copy; array
// and object payloads are shared between copies (a copied object Value
// refers to the same field set).
type Value struct {
	kind    Kind
	boolVal bool
	numVal  float64
	strVal  string
	arrVal  []Value
	objVal  *fields
}

// fields holds object members in insertion order so that encoding and
// iteration are deterministic.
type fields struct {
	keys []string
	vals map[string]Value
}

func newFields() *fields {
	return &fields{vals: make(map[string]Value)}
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, boolVal: b}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, numVal: f}
}

// Int returns a numeric value from an integer.
func Int(i int) Value {
	return Value{kind: KindNumber, numVal: float64(i)}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, strVal: s}
}

// Array returns an array value holding the given elements.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, arrVal: elems}
}

// Object returns a new, empty object value.
func Object() Value {
	return Value{kind: KindObject, objVal: newFields()}
}

// --------------------------------------------------------------------------
// Kind Predicates
// --------------------------------------------------------------------------

// Kind returns the variant this value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsBool reports whether the value is a boolean.
func (v Value) IsBool() bool { return v.kind == KindBool }

// IsNumber reports whether the value is a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsString reports whether the value is a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsArray reports whether the value is an array.
func (v Value) IsArray() bool { return v.kind == KindArray }

// IsObject reports whether the value is an object.
func (v Value) IsObject() bool { return v.kind == KindObject }

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Bool returns the boolean payload. It is only meaningful for KindBool.
func (v Value) Bool() bool { return v.boolVal }

// Num returns the numeric payload. It is only meaningful for KindNumber.
func (v Value) Num() float64 { return v.numVal }

// Str returns the string payload. It is only meaningful for KindString.
func (v Value) Str() string { return v.strVal }

// Len returns the element count for arrays and the field count for objects,
// and 0 for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arrVal)
	case KindObject:
		return len(v.objVal.keys)
	default:
		return 0
	}
}

// Index returns the i-th array element. It panics when the value is not an
// array or the index is out of range, mirroring slice semantics.
func (v Value) Index(i int) Value {
	if v.kind != KindArray {
		panic("value: Index on non-array value")
	}
	return v.arrVal[i]
}

// Get returns the field stored under key and whether it exists.
// For non-object values it returns (Null, false).
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Null(), false
	}
	val, ok := v.objVal.vals[key]
	return val, ok
}

// Set stores a field under key, preserving first-insertion order for
// existing keys. It panics when the value is not an object.
func (v Value) Set(key string, val Value) Value {
	if v.kind != KindObject {
		panic("value: Set on non-object value")
	}
	if _, ok := v.objVal.vals[key]; !ok {
		v.objVal.keys = append(v.objVal.keys, key)
	}
	v.objVal.vals[key] = val
	return v
}

// Delete removes a field. Unknown keys are a no-op.
func (v Value) Delete(key string) {
	if v.kind != KindObject {
		return
	}
	if _, ok := v.objVal.vals[key]; !ok {
		return
	}
	delete(v.objVal.vals, key)
	for i, k := range v.objVal.keys {
		if k == key {
			v.objVal.keys = append(v.objVal.keys[:i], v.objVal.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the object's field names in insertion order.
// The returned slice is a copy and safe to retain.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.objVal.keys))
	copy(keys, v.objVal.keys)
	return keys
}

// --------------------------------------------------------------------------
// Comparison
// --------------------------------------------------------------------------

// Equal reports deep equality. Objects compare by field set, not by
// insertion order; arrays compare element-wise in order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.boolVal == other.boolVal
	case KindNumber:
		return v.numVal == other.numVal
	case KindString:
		return v.strVal == other.strVal
	case KindArray:
		if len(v.arrVal) != len(other.arrVal) {
			return false
		}
		for i := range v.arrVal {
			if !v.arrVal[i].Equal(other.arrVal[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.objVal.keys) != len(other.objVal.keys) {
			return false
		}
		for k, val := range v.objVal.vals {
			otherVal, ok := other.objVal.vals[k]
			if !ok || !val.Equal(otherVal) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// --------------------------------------------------------------------------
// Debug Representation
// --------------------------------------------------------------------------

// String renders the value in a compact JSON-like form for diagnostics.
// Use the codec package for wire encoding.
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.boolVal))
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(v.numVal, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.strVal))
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.arrVal {
			if i > 0 {
				sb.WriteByte(',')
			}
			e.render(sb)
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		for i, k := range v.objVal.keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			v.objVal.vals[k].render(sb)
		}
		sb.WriteByte('}')
	}
}
