// Package note implements the pool's note algebra: commitments,
// nullifier hashes, and deterministic construction of the logical coins
// the wallet tracks.
//
// Grounded on internal/zkp/transaction.go's Note/computeNoteCommitment
// and internal/zkp/nullifier.go's DeriveNullifier in the teacher
// (m1zr-ccoin), rewritten onto field.Element/keccak instead of the
// teacher's placeholder xor-scramble hash (explicitly marked "Simple
// hash - use proper crypto in production" there).
package note

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/poolerr"
)

// Errors surfaced by this package. ErrAmountOutOfRange wraps
// poolerr.ErrAmountOutOfRange of the shared §7 taxonomy.
var (
	ErrAmountOutOfRange = fmt.Errorf("note: amount out of range: %w", poolerr.ErrAmountOutOfRange)
)

// maxAmount is 2^128, the exclusive upper bound spec.md §3 places on
// note amounts.
var maxAmount = new(big.Int).Lsh(big.NewInt(1), 128)

// Note is a logical coin: a secret, a nullifier, and an amount, bound
// together by a commitment.
type Note struct {
	Secret     field.Element
	Nullifier  field.Element
	Amount     field.Element
	Commitment field.Element

	// LeafIndex is the note's position in the Merkle tree once absorbed.
	// Nil means "unplaced" — the note has not yet been seen on-chain.
	LeafIndex *uint64

	// Timestamp is the observed block time of the absorbing event; it is
	// informational only and never participates in the commitment.
	Timestamp uint64
}

// ValidateAmount checks amount < 2^128, the constraint spec.md §3 places
// on note amounts (and the witness/circuit must also enforce).
func ValidateAmount(amount field.Element) error {
	if amount.BigInt().Cmp(maxAmount) >= 0 {
		return ErrAmountOutOfRange
	}
	return nil
}

// Commit computes commit(secret, nullifier, amount) = H(H(secret,
// nullifier), amount). Amount MUST be bound inside the outer hash — an
// amount-less commitment path existed in the teacher's source and is a
// deprecated, unimplemented variant here (spec.md §4.B, §9).
func Commit(secret, nullifier, amount field.Element) field.Element {
	inner := field.H(secret, nullifier)
	return field.H(inner, amount)
}

// NullifierHash computes H1(nullifier), the one-time spend marker
// published on-chain to prevent double spends without revealing which
// note was consumed.
func NullifierHash(nullifier field.Element) field.Element {
	return field.H1(nullifier)
}

// Generate draws a fresh, unplaced note for the given amount using a
// cryptographically secure random source.
//
// 31 random bytes for each of secret and nullifier guarantees a value
// strictly less than P without any further masking, since P occupies
// very nearly the full 254 bits of a 32-byte word (spec.md §4.B).
func Generate(amount field.Element) (*Note, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	secret, err := randomSubFieldElement()
	if err != nil {
		return nil, err
	}
	nullifier, err := randomSubFieldElement()
	if err != nil {
		return nil, err
	}

	return &Note{
		Secret:     secret,
		Nullifier:  nullifier,
		Amount:     amount,
		Commitment: Commit(secret, nullifier, amount),
	}, nil
}

// FromParts reconstructs a Note from already-known secret/nullifier/
// amount (e.g. the output of deterministic derivation) and computes its
// commitment. Used by the chain scanner when re-deriving candidate
// notes and by the spend planner when minting change/output notes.
func FromParts(secret, nullifier, amount field.Element) (*Note, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return &Note{
		Secret:     secret,
		Nullifier:  nullifier,
		Amount:     amount,
		Commitment: Commit(secret, nullifier, amount),
	}, nil
}

// IsPlaced reports whether the note has been absorbed into the Merkle
// tree (i.e. has a known leaf index).
func (n *Note) IsPlaced() bool {
	return n.LeafIndex != nil
}

// randomSubFieldElement draws 31 cryptographically random bytes,
// guaranteeing a value in [0, 2^248) ⊂ [0, P) with no reduction bias.
func randomSubFieldElement() (field.Element, error) {
	buf := make([]byte, 31)
	if _, err := rand.Read(buf); err != nil {
		return field.Element{}, err
	}
	return field.FromBytes(buf), nil
}
