// Package disclosure implements optional programmable disclosures: a
// holder proves a fact about a note (its amount lies in a declared
// range, or it has been held since before some time) without revealing
// the note itself. Strictly additive — no other package in this module
// depends on disclosure, and disclosure never gates a spend prepared by
// internal/planner.
//
// Grounded on the teacher's (m1zr-ccoin) internal/zkp/pedersen.go
// (Pedersen commitment over BN254 G1) and internal/zkp/disclosure.go
// (DisclosureType/DisclosureFlags/RangeDisclosure/TemporalDisclosure
// shapes), generalized onto this module's note/field types and onto
// internal/prover's RangeCircuit instead of the teacher's placeholder
// circuit wiring.
package disclosure

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	ErrInvalidValue     = errors.New("disclosure: invalid commitment value")
	ErrInvalidBlinder   = errors.New("disclosure: invalid blinder")
	ErrCommitmentFailed = errors.New("disclosure: commitment computation failed")
)

var (
	generatorG bn254.G1Affine
	generatorH bn254.G1Affine
	generatorsReady bool
)

// initGenerators lazily sets up the Pedersen commitment generators: G is
// BN254's standard G1 generator, H is derived from it via a fixed
// domain-separated scalar so no party knows log_G(H).
func initGenerators() {
	if generatorsReady {
		return
	}
	_, _, g1Gen, _ := bn254.Generators()
	generatorG = g1Gen

	hScalar := domainScalar("privacypool/pedersen-h")
	generatorH.ScalarMultiplication(&generatorG, hScalar)

	generatorsReady = true
}

// domainScalar derives a fixed, non-secret scalar from a domain string
// by reducing its bytes modulo the scalar field — used only to fix H,
// never as a source of hiding randomness.
func domainScalar(domain string) *big.Int {
	var e fr.Element
	e.SetBytes([]byte(domain))
	return e.BigInt(new(big.Int))
}

// Commitment is a Pedersen commitment C = value*G + blinder*H.
type Commitment struct {
	Point bn254.G1Affine
}

// NewCommitment computes C = value*G + blinder*H.
func NewCommitment(value, blinder *big.Int) (*Commitment, error) {
	initGenerators()
	if value == nil || blinder == nil {
		return nil, ErrInvalidValue
	}

	var valueG, blinderH bn254.G1Affine
	valueG.ScalarMultiplication(&generatorG, value)
	blinderH.ScalarMultiplication(&generatorH, blinder)

	var point bn254.G1Affine
	point.Add(&valueG, &blinderH)

	return &Commitment{Point: point}, nil
}

// NewRandomCommitment draws a fresh blinder and returns the commitment
// alongside it so the caller can retain the blinder for later proofs.
func NewRandomCommitment(value *big.Int) (*Commitment, *big.Int, error) {
	blinder, err := RandomScalar()
	if err != nil {
		return nil, nil, err
	}
	c, err := NewCommitment(value, blinder)
	if err != nil {
		return nil, nil, err
	}
	return c, blinder, nil
}

// Verify reports whether (value, blinder) opens c.
func (c *Commitment) Verify(value, blinder *big.Int) bool {
	expected, err := NewCommitment(value, blinder)
	if err != nil {
		return false
	}
	return c.Point.Equal(&expected.Point)
}

// Add homomorphically combines two commitments: useful for proving a
// sum of disclosed amounts without opening either input.
func (c *Commitment) Add(other *Commitment) *Commitment {
	var result bn254.G1Affine
	result.Add(&c.Point, &other.Point)
	return &Commitment{Point: result}
}

// Bytes returns the compressed point encoding.
func (c *Commitment) Bytes() []byte {
	b := c.Point.Bytes()
	return b[:]
}

// RandomScalar draws a uniformly random scalar field element as a
// big.Int, suitable as a Pedersen blinder.
func RandomScalar() (*big.Int, error) {
	var scalar fr.Element
	if _, err := scalar.SetRandom(); err != nil {
		return nil, err
	}
	return scalar.BigInt(new(big.Int)), nil
}

// RandomBytes draws n cryptographically random bytes.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := rand.Read(buf)
	return buf, err
}
