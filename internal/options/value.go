package options

import (
	"fmt"
	"strconv"
)

// Kind identifies the scalar type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a tagged option value: exactly one of string, bool or int.
// The zero Value is the empty string.
type Value struct {
	kind Kind
	str  string
	flag bool
	num  int
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue returns a bool Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, flag: b} }

// IntValue returns an int Value.
func IntValue(n int) Value { return Value{kind: KindInt, num: n} }

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload; it is empty for non-string values.
func (v Value) Str() string { return v.str }

// Bool returns the bool payload; it is false for non-bool values.
func (v Value) Bool() bool { return v.flag }

// Int returns the int payload; it is zero for non-int values.
func (v Value) Int() int { return v.num }

// String formats the payload the way it appears on a command line.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindInt:
		return strconv.Itoa(v.num)
	default:
		return v.str
	}
}

// Interface returns the payload as a plain Go value, for encoders.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.flag
	case KindInt:
		return v.num
	default:
		return v.str
	}
}

// ParseValue converts text into a Value of the requested kind. Booleans
// accept true/false, 1/0 and yes/no in any case.
func ParseValue(kind Kind, text string) (Value, error) {
	switch kind {
	case KindBool:
		b, ok := parseBool(text)
		if !ok {
			return Value{}, fmt.Errorf("invalid bool %q", text)
		}
		return BoolValue(b), nil
	case KindInt:
		n, err := strconv.Atoi(text)
		if err != nil {
			return Value{}, fmt.Errorf("invalid integer %q", text)
		}
		return IntValue(n), nil
	default:
		return StringValue(text), nil
	}
}

func parseBool(text string) (bool, bool) {
	switch text {
	case "true", "TRUE", "True", "1", "yes", "YES", "Yes":
		return true, true
	case "false", "FALSE", "False", "0", "no", "NO", "No":
		return false, true
	}
	return false, false
}
