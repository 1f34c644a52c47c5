// Package field implements arithmetic over the BN254 scalar field.
//
// The field is fixed by the on-chain accumulator: every hash, every note
// attribute, and every Merkle node lives in Fq, the integers modulo
//
//	P = 21888242871839275222246405745257275088548364400416034343698204186575808495617
//
// which is exactly BN254's scalar field, so Element is a thin wrapper
// over gnark-crypto's fr.Element rather than a hand-rolled big.Int
// reduction.
package field

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrNegative is returned when a negative integer is passed to ToField.
var ErrNegative = errors.New("field: negative integer has no canonical reduction")

// Size is the width in bytes of the big-endian encoding used at every
// hash boundary and in the on-chain ABI (pad32).
const Size = 32

// Element is a value in [0, P).
type Element struct {
	v fr.Element
}

// Zero is the additive identity.
var Zero = Element{}

// One is the multiplicative identity.
var One = Element{v: func() fr.Element { var e fr.Element; e.SetOne(); return e }()}

// ToField reduces a non-negative big.Int modulo P.
//
// Testable property 1 of spec.md §8: the result always lies in [0, P).
func ToField(x *big.Int) (Element, error) {
	if x.Sign() < 0 {
		return Element{}, ErrNegative
	}
	var e Element
	e.v.SetBigInt(x)
	return e, nil
}

// FromUint64 reduces a uint64 modulo P (always safe — P vastly exceeds
// the uint64 range).
func FromUint64(x uint64) Element {
	var e Element
	e.v.SetUint64(x)
	return e
}

// FromBytes interprets b as a big-endian integer and reduces it modulo P.
// Any length is accepted; callers at a 32-byte hash boundary should pass
// exactly Size bytes (see Bytes).
func FromBytes(b []byte) Element {
	var e Element
	e.v.SetBytes(b)
	return e
}

// MustFromDecimal parses a base-10 string into a field element. Panics on
// malformed input — used for literals and tests, never for untrusted
// wire data (use FromDecimal for that).
func MustFromDecimal(s string) Element {
	e, err := FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return e
}

// FromDecimal parses a base-10 string into a field element, reducing
// modulo P if the literal integer is out of range.
func FromDecimal(s string) (Element, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Element{}, errors.New("field: invalid decimal literal")
	}
	return ToField(n)
}

// Bytes returns the Size-byte big-endian encoding used as the pad32
// representation at every hash and ABI boundary.
func (e Element) Bytes() [Size]byte {
	return e.v.Bytes()
}

// BigInt returns the canonical representative in [0, P) as a big.Int.
func (e Element) BigInt() *big.Int {
	var out big.Int
	e.v.BigInt(&out)
	return &out
}

// Decimal returns the canonical base-10 string representation — the
// wire format spec.md §6 requires for serialized notes and witnesses.
func (e Element) Decimal() string {
	return e.BigInt().String()
}

// Equal reports whether two elements are the same residue.
func (e Element) Equal(other Element) bool {
	return e.v.Equal(&other.v)
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool {
	return e.v.IsZero()
}

// Add returns e + other mod P.
func (e Element) Add(other Element) Element {
	var out Element
	out.v.Add(&e.v, &other.v)
	return out
}

// Sub returns e - other mod P.
func (e Element) Sub(other Element) Element {
	var out Element
	out.v.Sub(&e.v, &other.v)
	return out
}

// Cmp compares the canonical big.Int representatives (useful for the
// planner's ascending-leaf-index tie-break and amount comparisons; it is
// not a field operation, since Fq has no native order).
func (e Element) Cmp(other Element) int {
	return e.BigInt().Cmp(other.BigInt())
}

// String implements fmt.Stringer, printing the canonical decimal form.
func (e Element) String() string {
	return e.Decimal()
}

// RandomElement draws a uniformly random element of Fq using a
// cryptographically secure source. Used for claim-credential style
// fresh blinding where deterministic derivation isn't called for.
func RandomElement() (Element, error) {
	var out Element
	if _, err := out.v.SetRandom(); err != nil {
		return Element{}, err
	}
	return out, nil
}
