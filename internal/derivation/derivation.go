// Package derivation implements the wallet's deterministic key schedule:
// a single wallet signature expands into an unbounded stream of note
// secrets, nullifiers, and claim credentials, all re-derivable from
// scratch without persisting anything beyond the signature itself.
//
// Grounded on internal/zkp/nullifier.go's DeriveNullifier /
// NullifierDerivationKey domain-separation pattern in the teacher
// (m1zr-ccoin) — a fixed tag prefix folded into a hash before mixing in
// the variable material — generalized from sha256/[]byte into the
// field.H/H1 domain-separated hash chain spec.md §4.D requires.
package derivation

import (
	"github.com/ccoin/privacypool/internal/field"
)

// Tag identifies which derivation stream a segment belongs to. Distinct
// tags guarantee that, e.g., a transfer secret and a claim credential
// derived at the same index can never collide.
type Tag string

const (
	TagSecret    Tag = "note-secret"
	TagNullifier Tag = "note-nullifier"

	// TagClaimSecret and TagClaimCommitment are the literal tag strings
	// spec.md §4.D names for the claim-credential pair ("claim" and
	// "claim_commitment") rather than an internally-consistent but
	// non-matching pair — this credential crosses a party boundary (an
	// operator/auction service derives claim_commitment independently
	// of the bidder's wallet), so byte-exact agreement on the tag
	// strings is load-bearing in a way the purely-internal note-secret
	// stream is not.
	TagClaimSecret     Tag = "claim"
	TagClaimCommitment Tag = "claim_commitment"
)

// MasterSeedFromSignature folds an arbitrary-length wallet signature
// into a single field element, the root of every subsequent derivation
// (spec.md §4.D). The same signature always yields the same seed; the
// wallet's persisted blob also carries the seed itself.
func MasterSeedFromSignature(signature []byte) field.Element {
	return field.HashBytes(signature)
}

// Derive expands (seed, tag, index) into a field element via two
// chained domain-separated hashes: first the tag is folded in to split
// the space into independent streams, then the index is folded in to
// walk that stream. Bit-exact and deterministic: the same
// (seed, tag, index) always yields the same output, with no hidden
// state beyond the three arguments (spec.md §4.D, §8 property 1).
func Derive(seed field.Element, tag Tag, index uint64) field.Element {
	tagField := field.HashBytes([]byte(tag))
	withTag := field.H(seed, tagField)
	return field.H(withTag, field.FromUint64(index))
}

// NoteSecretAndNullifier derives the (secret, nullifier) pair for the
// note at the given index in the wallet's deterministic note stream.
func NoteSecretAndNullifier(seed field.Element, index uint64) (secret, nullifier field.Element) {
	return Derive(seed, TagSecret, index), Derive(seed, TagNullifier, index)
}

// ClaimCredential derives the (claim_secret, claim_commitment) pair for
// an auction/operator slot at the given index, exactly as spec.md §4.D
// specifies: claim_secret = derive(seed, "claim", slot_id) and
// claim_commitment = derive(seed, "claim_commitment", slot_id). Unlike a
// note's (secret, nullifier) pair, claim_commitment is derived directly
// from the seed and slot id — not folded through note.Commit — because
// it functions as a destination commitment an operator posts on the
// bidder's behalf (spec.md §3's "let an operator create a new note
// payable to the bidder without revealing identity"), not a nullifier
// paired with claim_secret.
func ClaimCredential(seed field.Element, slotID uint64) (claimSecret, claimCommitment field.Element) {
	return Derive(seed, TagClaimSecret, slotID), Derive(seed, TagClaimCommitment, slotID)
}
