package field

import (
	"golang.org/x/crypto/sha3"
)

// H implements the pool's binary hash primitive:
//
//	H(a, b) = keccak256(pad32(a) || pad32(b)) mod P
//
// Both operands are padded to the full 32-byte width before hashing so
// the result matches the on-chain accumulator byte-for-byte (spec.md
// §4.A). This is the binary hash primitive used by commitments, the
// Merkle tree, and key derivation; nullifier hashes use H1.
func H(a, b Element) Element {
	ab := a.Bytes()
	bb := b.Bytes()

	h := sha3.NewLegacyKeccak256()
	h.Write(ab[:])
	h.Write(bb[:])

	return FromBytes(h.Sum(nil))
}

// H1 implements the pool's unary hash primitive:
//
//	H1(a) = keccak256(pad32(a)) mod P
//
// Used for nullifier hashes.
func H1(a Element) Element {
	ab := a.Bytes()

	h := sha3.NewLegacyKeccak256()
	h.Write(ab[:])

	return FromBytes(h.Sum(nil))
}

// HashBytes reduces keccak256 of an arbitrary byte string modulo P. Used
// to fold a UTF-8 tag (e.g. "note-secret", "note-nullifier", "claim") into Fq
// before feeding it to H during derivation, and to derive a wallet's
// master seed from a raw signature (spec.md §4.D).
func HashBytes(data []byte) Element {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return FromBytes(h.Sum(nil))
}
