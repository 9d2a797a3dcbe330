// Package abi converts structured call arguments to and from the flat felt
// sequences contracts consume. Types form a closed recursive set; values are
// an abstract tagged representation so arbitrary interfaces discovered at
// runtime can be driven through one generic encode/decode pair.
package abi

import (
	"fmt"
	"strings"

	"github.com/cairn-systems/starkgo/core/felt"
)

type Kind uint8

const (
	FeltKind Kind = iota + 1
	ArrayKind
	TupleKind
	StructKind
	OptionKind
)

func (k Kind) String() string {
	switch k {
	case FeltKind:
		return "felt"
	case ArrayKind:
		return "array"
	case TupleKind:
		return "tuple"
	case StructKind:
		return "struct"
	case OptionKind:
		return "option"
	default:
		return "<unknown>"
	}
}

// Type describes one ABI type. Which fields are meaningful depends on Kind:
// Elem for arrays and options, Members for tuples, Name and Fields for
// structs. Field names are carried for decoding convenience only and never
// enter the encoding.
type Type struct {
	Kind    Kind
	Elem    *Type
	Members []Type
	Name    string
	Fields  []Field
}

type Field struct {
	Name string
	Type Type
}

func FeltType() Type {
	return Type{Kind: FeltKind}
}

func ArrayOf(elem Type) Type {
	return Type{Kind: ArrayKind, Elem: &elem}
}

func TupleOf(members ...Type) Type {
	return Type{Kind: TupleKind, Members: members}
}

func StructOf(name string, fields ...Field) Type {
	return Type{Kind: StructKind, Name: name, Fields: fields}
}

func OptionOf(elem Type) Type {
	return Type{Kind: OptionKind, Elem: &elem}
}

func (t *Type) String() string {
	switch t.Kind {
	case FeltKind:
		return "felt"
	case ArrayKind:
		return fmt.Sprintf("Array<%s>", t.Elem.String())
	case OptionKind:
		return fmt.Sprintf("Option<%s>", t.Elem.String())
	case TupleKind:
		members := make([]string, len(t.Members))
		for i := range t.Members {
			members[i] = t.Members[i].String()
		}
		return "(" + strings.Join(members, ", ") + ")"
	case StructKind:
		return t.Name
	default:
		return "<unknown>"
	}
}

// Value is the abstract runtime representation of an ABI value. Scalar holds
// a felt; Elems holds array elements, tuple members or struct fields in
// declared order; Some and Inner carry option state.
type Value struct {
	Kind   Kind
	Scalar felt.Felt
	Elems  []Value
	Some   bool
	Inner  *Value
}

func FeltValue(f *felt.Felt) Value {
	return Value{Kind: FeltKind, Scalar: *f}
}

func Uint64Value(v uint64) Value {
	return Value{Kind: FeltKind, Scalar: *new(felt.Felt).SetUint64(v)}
}

func ArrayValue(elems ...Value) Value {
	return Value{Kind: ArrayKind, Elems: elems}
}

func TupleValue(members ...Value) Value {
	return Value{Kind: TupleKind, Elems: members}
}

func StructValue(fields ...Value) Value {
	return Value{Kind: StructKind, Elems: fields}
}

func SomeValue(inner Value) Value {
	return Value{Kind: OptionKind, Some: true, Inner: &inner}
}

func NoneValue() Value {
	return Value{Kind: OptionKind}
}

// Equal compares two values structurally.
func (v *Value) Equal(other *Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case FeltKind:
		return v.Scalar.Equal(&other.Scalar)
	case ArrayKind, TupleKind, StructKind:
		if len(v.Elems) != len(other.Elems) {
			return false
		}
		for i := range v.Elems {
			if !v.Elems[i].Equal(&other.Elems[i]) {
				return false
			}
		}
		return true
	case OptionKind:
		if v.Some != other.Some {
			return false
		}
		return !v.Some || v.Inner.Equal(other.Inner)
	default:
		return false
	}
}
