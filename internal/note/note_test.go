package note

import (
	"testing"

	"github.com/ccoin/privacypool/internal/field"
)

func TestCommitDeterministic(t *testing.T) {
	s := field.FromUint64(1)
	n := field.FromUint64(2)
	a := field.FromUint64(10)

	c1 := Commit(s, n, a)
	c2 := Commit(s, n, a)
	if !c1.Equal(c2) {
		t.Fatal("Commit must be deterministic")
	}

	// Amount must participate in the outer hash: changing it must change
	// the commitment (guards against the deprecated amount-less path).
	c3 := Commit(s, n, field.FromUint64(11))
	if c1.Equal(c3) {
		t.Fatal("commitment must depend on amount")
	}
}

func TestGenerateDistinctNotes(t *testing.T) {
	amount := field.FromUint64(100)
	n1, err := Generate(amount)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	n2, err := Generate(amount)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n1.Commitment.Equal(n2.Commitment) {
		t.Fatal("two freshly generated notes must not share a commitment")
	}
	if n1.IsPlaced() {
		t.Fatal("freshly generated note must be unplaced")
	}
}

func TestGenerateRejectsOutOfRangeAmount(t *testing.T) {
	big128, _ := field.FromDecimal("340282366920938463463374607431768211456") // 2^128
	if _, err := Generate(big128); err != ErrAmountOutOfRange {
		t.Fatalf("expected ErrAmountOutOfRange, got %v", err)
	}

	maxOK, _ := field.FromDecimal("340282366920938463463374607431768211455") // 2^128 - 1
	if _, err := Generate(maxOK); err != nil {
		t.Fatalf("2^128-1 should be accepted: %v", err)
	}
}

func TestNullifierHash(t *testing.T) {
	n := field.FromUint64(77)
	if !NullifierHash(n).Equal(field.H1(n)) {
		t.Fatal("NullifierHash must equal H1(nullifier)")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	amount := field.FromUint64(55)
	orig, err := Generate(amount)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	leaf := uint64(3)
	orig.LeafIndex = &leaf
	orig.Timestamp = 12345

	s := orig.Serialize()
	back, err := Deserialize(s)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	s2 := back.Serialize()
	if s != s2 {
		t.Fatalf("round trip mismatch: %+v != %+v", s, s2)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	amount := field.FromUint64(9)
	orig, err := Generate(amount)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	env, err := EncodeEnvelope(orig.Serialize())
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	back, err := DecodeEnvelope(env)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if back != orig.Serialize() {
		t.Fatal("envelope round trip mismatch")
	}
}
