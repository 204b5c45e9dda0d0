package value

import (
	"fmt"
	"strconv"
)

// ValueType identifies the variant held by a Value
type ValueType int

const (
	TypeNil ValueType = iota
	TypeBool
	TypeNumber
	TypeObject
)

var typeNames = map[ValueType]string{
	TypeNil:    "nil",
	TypeBool:   "bool",
	TypeNumber: "number",
	TypeObject: "object",
}

func (t ValueType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// Value is a tagged union of the four runtime value variants.
// Object values hold a non-owning reference to a heap object.
type Value struct {
	Type    ValueType
	number  float64
	boolean bool
	object  Object
}

// NilValue returns the nil value
func NilValue() Value {
	return Value{Type: TypeNil}
}

// BoolValue returns a boolean value
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, boolean: b}
}

// NumberValue returns a number value
func NumberValue(n float64) Value {
	return Value{Type: TypeNumber, number: n}
}

// ObjectValue returns a value referencing a heap object
func ObjectValue(o Object) Value {
	return Value{Type: TypeObject, object: o}
}

// IsNil returns true if the value is nil
func (v Value) IsNil() bool {
	return v.Type == TypeNil
}

// IsBool returns true if the value is a boolean
func (v Value) IsBool() bool {
	return v.Type == TypeBool
}

// IsNumber returns true if the value is a number
func (v Value) IsNumber() bool {
	return v.Type == TypeNumber
}

// IsObject returns true if the value references a heap object
func (v Value) IsObject() bool {
	return v.Type == TypeObject
}

// IsString returns true if the value references a string object
func (v Value) IsString() bool {
	return v.Type == TypeObject && v.object.Kind() == ObjString
}

// AsBool returns the boolean payload; only valid when IsBool
func (v Value) AsBool() bool {
	return v.boolean
}

// AsNumber returns the number payload; only valid when IsNumber
func (v Value) AsNumber() float64 {
	return v.number
}

// AsObject returns the object reference; only valid when IsObject
func (v Value) AsObject() Object {
	return v.object
}

// AsString returns the string object; only valid when IsString
func (v Value) AsString() *StringObj {
	return v.object.(*StringObj)
}

// IsFalsey reports the language's falsiness rule: nil and false are
// falsy, every other value is truthy.
func (v Value) IsFalsey() bool {
	return v.Type == TypeNil || (v.Type == TypeBool && !v.boolean)
}

// Equal compares two values. Values of different variants are never
// equal; numbers use IEEE ==, objects defer to the object's equality.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeNil:
		return true
	case TypeBool:
		return v.boolean == other.boolean
	case TypeNumber:
		return v.number == other.number
	case TypeObject:
		return v.object.EqualTo(other.object)
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Type {
	case TypeNil:
		return "nil"
	case TypeBool:
		return strconv.FormatBool(v.boolean)
	case TypeNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case TypeObject:
		return v.object.String()
	default:
		return fmt.Sprintf("Value(%d)", int(v.Type))
	}
}
