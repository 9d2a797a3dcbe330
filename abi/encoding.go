package abi

import (
	"fmt"
	"math/big"

	"github.com/cairn-systems/starkgo/core/felt"
	"github.com/pkg/errors"
)

// ErrMalformedAbiData marks decode failures: truncated input or a
// length/discriminant outside the type's valid range.
var ErrMalformedAbiData = errors.New("malformed abi data")

// EncodingError reports a value that does not fit its declared type. It is
// always a local, caller-side bug and is never retried.
type EncodingError struct {
	Type   string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %s: %s", e.Type, e.Reason)
}

func encodingErrorf(t *Type, format string, args ...any) error {
	return &EncodingError{Type: t.String(), Reason: fmt.Sprintf(format, args...)}
}

// Encode flattens v into the felt sequence its declared type prescribes.
func Encode(v *Value, t *Type) ([]*felt.Felt, error) {
	var out []*felt.Felt
	if err := encodeInto(v, t, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeInto(v *Value, t *Type, out *[]*felt.Felt) error {
	if v.Kind != t.Kind {
		return encodingErrorf(t, "value of kind %s given", v.Kind)
	}

	switch t.Kind {
	case FeltKind:
		scalar := v.Scalar
		*out = append(*out, &scalar)
	case ArrayKind:
		*out = append(*out, new(felt.Felt).SetUint64(uint64(len(v.Elems))))
		for i := range v.Elems {
			if err := encodeInto(&v.Elems[i], t.Elem, out); err != nil {
				return err
			}
		}
	case TupleKind:
		if len(v.Elems) != len(t.Members) {
			return encodingErrorf(t, "wrong arity: %d members given, %d declared", len(v.Elems), len(t.Members))
		}
		for i := range t.Members {
			if err := encodeInto(&v.Elems[i], &t.Members[i], out); err != nil {
				return err
			}
		}
	case StructKind:
		if len(v.Elems) != len(t.Fields) {
			return encodingErrorf(t, "wrong arity: %d fields given, %d declared", len(v.Elems), len(t.Fields))
		}
		for i := range t.Fields {
			if err := encodeInto(&v.Elems[i], &t.Fields[i].Type, out); err != nil {
				return err
			}
		}
	case OptionKind:
		// Cairo's serde numbers the variants Some=0, None=1.
		if !v.Some {
			*out = append(*out, new(felt.Felt).SetUint64(1))
			return nil
		}
		*out = append(*out, new(felt.Felt))
		if err := encodeInto(v.Inner, t.Elem, out); err != nil {
			return err
		}
	default:
		return encodingErrorf(t, "unknown kind %d", t.Kind)
	}
	return nil
}

// Decode reads one value of type t from the front of data and returns it
// together with the unconsumed remainder, so a contiguous response buffer
// holding several return values can be decoded by continuation. Decode is
// pure: on failure data is untouched and no partial value escapes.
func Decode(data []*felt.Felt, t *Type) (Value, []*felt.Felt, error) {
	switch t.Kind {
	case FeltKind:
		if len(data) == 0 {
			return Value{}, nil, errors.Wrapf(ErrMalformedAbiData, "decoding %s: input exhausted", t)
		}
		return FeltValue(data[0]), data[1:], nil

	case ArrayKind:
		if len(data) == 0 {
			return Value{}, nil, errors.Wrapf(ErrMalformedAbiData, "decoding %s: missing length prefix", t)
		}
		length := new(big.Int)
		data[0].BigInt(length)
		if !length.IsUint64() || length.Uint64() > uint64(len(data)-1) {
			return Value{}, nil, errors.Wrapf(ErrMalformedAbiData, "decoding %s: length %s out of range", t, length)
		}
		rest := data[1:]
		elems := make([]Value, 0, length.Uint64())
		for i := uint64(0); i < length.Uint64(); i++ {
			elem, remaining, err := Decode(rest, t.Elem)
			if err != nil {
				return Value{}, nil, err
			}
			elems = append(elems, elem)
			rest = remaining
		}
		return Value{Kind: ArrayKind, Elems: elems}, rest, nil

	case TupleKind:
		elems := make([]Value, 0, len(t.Members))
		rest := data
		for i := range t.Members {
			elem, remaining, err := Decode(rest, &t.Members[i])
			if err != nil {
				return Value{}, nil, err
			}
			elems = append(elems, elem)
			rest = remaining
		}
		return Value{Kind: TupleKind, Elems: elems}, rest, nil

	case StructKind:
		elems := make([]Value, 0, len(t.Fields))
		rest := data
		for i := range t.Fields {
			elem, remaining, err := Decode(rest, &t.Fields[i].Type)
			if err != nil {
				return Value{}, nil, err
			}
			elems = append(elems, elem)
			rest = remaining
		}
		return Value{Kind: StructKind, Elems: elems}, rest, nil

	case OptionKind:
		if len(data) == 0 {
			return Value{}, nil, errors.Wrapf(ErrMalformedAbiData, "decoding %s: missing discriminant", t)
		}
		switch {
		case data[0].IsZero():
			inner, rest, err := Decode(data[1:], t.Elem)
			if err != nil {
				return Value{}, nil, err
			}
			return SomeValue(inner), rest, nil
		case data[0].IsOne():
			return NoneValue(), data[1:], nil
		default:
			return Value{}, nil, errors.Wrapf(ErrMalformedAbiData, "decoding %s: discriminant %s out of range", t, data[0])
		}

	default:
		return Value{}, nil, errors.Wrapf(ErrMalformedAbiData, "unknown kind %d", t.Kind)
	}
}
