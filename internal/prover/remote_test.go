package prover

import (
	"testing"

	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/merkletree"
	"github.com/ccoin/privacypool/internal/note"
)

func TestToRemoteWitnessSerializesEveryConsolidationInput(t *testing.T) {
	a := mustNote(t, 4)
	b := mustNote(t, 6)
	c := mustNote(t, 9)
	output := mustNote(t, 19)

	w := Witness{
		Operation: OpConsolidation,
		Inputs:    []*note.Note{a, b, c},
		MerkleProof: []*merkletree.Proof{
			{}, {}, {},
		},
		MerkleRoot:       field.FromUint64(1),
		OutputCommitment: output.Commitment,
		OutputAmount:     output.Amount,
		Output:           output,
	}

	rw := toRemoteWitness(w)

	if len(rw.Notes) != 3 {
		t.Fatalf("serialized %d notes, want 3 (one per consolidation input)", len(rw.Notes))
	}
	if len(rw.MerklePaths) != 3 {
		t.Fatalf("serialized %d merkle paths, want 3", len(rw.MerklePaths))
	}
	for i, n := range []*note.Note{a, b, c} {
		if rw.Notes[i].Secret != n.Secret.Decimal() {
			t.Fatalf("input %d secret = %s, want %s", i, rw.Notes[i].Secret, n.Secret.Decimal())
		}
		if rw.Notes[i].Nullifier != n.Nullifier.Decimal() {
			t.Fatalf("input %d nullifier mismatch", i)
		}
		if rw.Notes[i].Amount != n.Amount.Decimal() {
			t.Fatalf("input %d amount mismatch", i)
		}
	}
	if rw.OutputSecret != output.Secret.Decimal() || rw.OutputNullifier != output.Nullifier.Decimal() {
		t.Fatal("consolidation output note's secret/nullifier must be serialized for the remote prover")
	}
}

func TestToRemoteWitnessSingleInputForWithdraw(t *testing.T) {
	n := mustNote(t, 10)
	w := Witness{
		Operation:    OpWithdraw,
		Inputs:       []*note.Note{n},
		MerkleProof:  []*merkletree.Proof{{}},
		MerkleRoot:   field.FromUint64(1),
		OutputAmount: n.Amount,
		Recipient:    field.FromUint64(0xAB),
	}

	rw := toRemoteWitness(w)
	if len(rw.Notes) != 1 || len(rw.MerklePaths) != 1 {
		t.Fatalf("withdraw must serialize exactly one note/path, got %d/%d", len(rw.Notes), len(rw.MerklePaths))
	}
	if rw.Notes[0].Secret != n.Secret.Decimal() {
		t.Fatal("withdraw note secret not serialized correctly")
	}
}
