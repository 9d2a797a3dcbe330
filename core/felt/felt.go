package felt

import (
	"errors"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/fxamacker/cbor/v2"
)

// Felt is an element of the stark field. The zero value is usable and equals
// the zero element. Every stored value is a reduced residue modulo the field
// prime, the underlying fp.Element never carries a representation >= modulus.
type Felt struct {
	val fp.Element
}

func NewFelt(element *fp.Element) *Felt {
	return &Felt{
		val: *element,
	}
}

const (
	Limbs = fp.Limbs // number of 64 bits words needed to represent a Element
	Bits  = fp.Bits  // number of bits needed to represent a Element
	Bytes = fp.Bytes // number of bytes needed to represent a Element

	Base10 = 10
	Base16 = 16
)

// zero felt constant
var Zero = Felt{}

var (
	ErrOverflow      = errors.New("felt: value does not fit in the field")
	ErrNotInvertible = errors.New("felt: zero is not invertible")
)

var bigIntPool = sync.Pool{
	New: func() interface{} {
		return new(big.Int)
	},
}

// Impl returns the underlying field element type
func (z *Felt) Impl() *fp.Element {
	return &z.val
}

// UnmarshalJSON accepts numbers and strings as input.
// See Element.SetString for valid prefixes (0x, 0b, ...).
// If there is an error, we try to explicitly unmarshal from hex before
// returning an error. This implementation is taken from [gnark-crypto].
//
// [gnark-crypto]: https://github.com/ConsenSys/gnark-crypto/blob/9fd0a7de2044f088a29cfac373da73d868230148/ecc/stark-curve/fp/element.go#L1028-L1056
func (z *Felt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) > fp.Bits*3 {
		return errors.New("value too large (max = Element.Bits * 3)")
	}

	// we accept numbers and strings, remove leading and trailing quotes if any
	if len(s) > 0 && s[0] == '"' {
		s = s[1:]
	}
	if len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}

	// get temporary big int from the pool
	vv := bigIntPool.Get().(*big.Int)

	if _, ok := vv.SetString(s, 0); !ok {
		if _, ok := vv.SetString(s, 16); !ok {
			return errors.New("can't parse into a big.Int: " + s)
		}
	}

	z.val.SetBigInt(vv)

	// release object into pool
	bigIntPool.Put(vv)
	return nil
}

// MarshalJSON emits the canonical hex form as a JSON string.
func (z *Felt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + z.String() + `"`), nil
}

// MarshalCBOR encodes the felt as its canonical 32-byte big-endian form.
func (z Felt) MarshalCBOR() ([]byte, error) {
	b := z.Bytes()
	return cbor.Marshal(b[:])
}

// UnmarshalCBOR decodes a canonical 32-byte big-endian encoding produced by
// MarshalCBOR. Values >= modulus are rejected.
func (z *Felt) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return err
	}
	return z.SetBytesCanonical(b)
}

// SetBytes interprets e as a big-endian integer and reduces it modulo the
// field prime.
func (z *Felt) SetBytes(e []byte) *Felt {
	z.val.SetBytes(e)
	return z
}

// SetBytesCanonical sets z from a big-endian byte slice of at most
// [Bytes] bytes, failing with ErrOverflow if the encoded integer is not a
// reduced residue. This is the strict counterpart of SetBytes for data that
// crosses a trust boundary.
func (z *Felt) SetBytesCanonical(e []byte) error {
	if len(e) > Bytes {
		return ErrOverflow
	}

	vv := bigIntPool.Get().(*big.Int)
	defer bigIntPool.Put(vv)

	vv.SetBytes(e)
	if vv.Cmp(fp.Modulus()) >= 0 {
		return ErrOverflow
	}
	z.val.SetBigInt(vv)
	return nil
}

// SetString forwards the call to underlying field element implementation
func (z *Felt) SetString(number string) (*Felt, error) {
	_, err := z.val.SetString(number)
	return z, err
}

// SetUint64 forwards the call to underlying field element implementation
func (z *Felt) SetUint64(v uint64) *Felt {
	z.val.SetUint64(v)
	return z
}

// SetBigInt forwards the call to underlying field element implementation
func (z *Felt) SetBigInt(v *big.Int) *Felt {
	z.val.SetBigInt(v)
	return z
}

// SetRandom forwards the call to underlying field element implementation
func (z *Felt) SetRandom() (*Felt, error) {
	_, err := z.val.SetRandom()
	return z, err
}

// Set forwards the call to underlying field element implementation
func (z *Felt) Set(x *Felt) *Felt {
	z.val.Set(&x.val)
	return z
}

// String returns the canonical hex representation: lowercase, leading zeros
// stripped, 0x-prefixed.
func (z *Felt) String() string {
	return "0x" + z.val.Text(Base16)
}

// Text forwards the call to underlying field element implementation
func (z *Felt) Text(base int) string {
	return z.val.Text(base)
}

// BigInt forwards the call to underlying field element implementation
func (z *Felt) BigInt(res *big.Int) *big.Int {
	return z.val.BigInt(res)
}

// Uint64 forwards the call to underlying field element implementation
func (z *Felt) Uint64() uint64 {
	return z.val.Bits()[0]
}

// Equal forwards the call to underlying field element implementation
func (z *Felt) Equal(x *Felt) bool {
	return z.val.Equal(&x.val)
}

// Marshal forwards the call to underlying field element implementation
func (z *Felt) Marshal() []byte {
	return z.val.Marshal()
}

// Unmarshal forwards the call to underlying field element implementation
func (z *Felt) Unmarshal(e []byte) {
	z.val.SetBytes(e)
}

// Bytes returns the canonical fixed-width big-endian encoding.
func (z *Felt) Bytes() [32]byte {
	return z.val.Bytes()
}

// IsOne forwards the call to underlying field element implementation
func (z *Felt) IsOne() bool {
	return z.val.IsOne()
}

// IsZero forwards the call to underlying field element implementation
func (z *Felt) IsZero() bool {
	return z.val.IsZero()
}

// Add forwards the call to underlying field element implementation
func (z *Felt) Add(x, y *Felt) *Felt {
	z.val.Add(&x.val, &y.val)
	return z
}

// Sub forwards the call to underlying field element implementation
func (z *Felt) Sub(x, y *Felt) *Felt {
	z.val.Sub(&x.val, &y.val)
	return z
}

// Mul forwards the call to underlying field element implementation
func (z *Felt) Mul(x, y *Felt) *Felt {
	z.val.Mul(&x.val, &y.val)
	return z
}

// Double forwards the call to underlying field element implementation
func (z *Felt) Double(x *Felt) *Felt {
	z.val.Double(&x.val)
	return z
}

// Exp sets z to x^e and returns z.
func (z *Felt) Exp(x *Felt, e *big.Int) *Felt {
	z.val.Exp(x.val, e)
	return z
}

// Inverse sets z to 1/x modulo the field prime. The zero element has no
// inverse, in that case ErrNotInvertible is returned and z is left untouched.
func (z *Felt) Inverse(x *Felt) (*Felt, error) {
	if x.IsZero() {
		return nil, ErrNotInvertible
	}
	z.val.Inverse(&x.val)
	return z, nil
}

// Div sets z to x/y. Fails with ErrNotInvertible when y is zero.
func (z *Felt) Div(x, y *Felt) (*Felt, error) {
	var yInv Felt
	if _, err := yInv.Inverse(y); err != nil {
		return nil, err
	}
	z.val.Mul(&x.val, &yInv.val)
	return z, nil
}

// Halve forwards the call to underlying field element implementation
func (z *Felt) Halve() {
	z.val.Halve()
}

// Cmp forwards the call to underlying field element implementation
func (z *Felt) Cmp(x *Felt) int {
	return z.val.Cmp(&x.val)
}
