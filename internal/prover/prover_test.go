package prover

import (
	"context"
	"testing"

	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/note"
	"github.com/ccoin/privacypool/internal/poolerr"
)

func mustNote(t *testing.T, amount uint64) *note.Note {
	t.Helper()
	n, err := note.Generate(field.FromUint64(amount))
	if err != nil {
		t.Fatalf("note.Generate: %v", err)
	}
	return n
}

func TestPublicInputsWithdrawOrdering(t *testing.T) {
	input := mustNote(t, 10)
	root := field.FromUint64(1)
	amount := field.FromUint64(10)
	recipient := field.FromUint64(42)

	w := Witness{
		Operation:    OpWithdraw,
		Inputs:       []*note.Note{input},
		MerkleRoot:   root,
		OutputAmount: amount,
		Recipient:    recipient,
	}

	got := PublicInputs(w)
	want := []field.Element{note.NullifierHash(input.Nullifier), root, amount, recipient}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("index %d = %s, want %s", i, got[i].Decimal(), want[i].Decimal())
		}
	}
}

func TestPublicInputsTransferOrderingWithChange(t *testing.T) {
	input := mustNote(t, 10)
	change := mustNote(t, 3)
	root := field.FromUint64(1)
	outputAmount := field.FromUint64(7)
	outputCommitment := field.FromUint64(99)

	w := Witness{
		Operation:        OpTransfer,
		Inputs:           []*note.Note{input},
		MerkleRoot:       root,
		OutputAmount:     outputAmount,
		OutputCommitment: outputCommitment,
		Change:           change,
	}

	got := PublicInputs(w)
	want := []field.Element{
		note.NullifierHash(input.Nullifier),
		root,
		outputAmount,
		change.Commitment,
		change.Amount,
		outputCommitment,
	}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("index %d = %s, want %s", i, got[i].Decimal(), want[i].Decimal())
		}
	}
}

func TestPublicInputsTransferOrderingNoChange(t *testing.T) {
	input := mustNote(t, 10)
	root := field.FromUint64(1)
	outputAmount := field.FromUint64(10)
	outputCommitment := field.FromUint64(99)

	w := Witness{
		Operation:        OpTransfer,
		Inputs:           []*note.Note{input},
		MerkleRoot:       root,
		OutputAmount:     outputAmount,
		OutputCommitment: outputCommitment,
		Change:           nil,
	}

	got := PublicInputs(w)
	if !got[3].Equal(field.Zero) || !got[4].Equal(field.Zero) {
		t.Fatalf("no-change transfer must zero the change commitment/amount slots, got %s / %s",
			got[3].Decimal(), got[4].Decimal())
	}
}

func TestPublicInputsConsolidationOrdering(t *testing.T) {
	a := mustNote(t, 4)
	b := mustNote(t, 6)
	root := field.FromUint64(1)
	outputCommitment := field.FromUint64(99)

	w := Witness{
		Operation:        OpConsolidation,
		Inputs:           []*note.Note{a, b},
		MerkleRoot:       root,
		OutputCommitment: outputCommitment,
	}

	got := PublicInputs(w)
	want := []field.Element{
		note.NullifierHash(a.Nullifier),
		note.NullifierHash(b.Nullifier),
		root,
		outputCommitment,
	}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("index %d = %s, want %s", i, got[i].Decimal(), want[i].Decimal())
		}
	}
}

// fakeBackend is a test double standing in for a real circuit backend,
// so the orchestrator's dispatch/size-check behavior can be tested
// without running an actual Groth16 setup (spec.md §8 scenario 6:
// backends must agree on parity, which for the orchestrator's contract
// means agreeing on ProofSize and on PublicInputs for the same
// witness).
type fakeBackend struct {
	proofBytes int
	called     bool
}

func (f *fakeBackend) Prove(ctx context.Context, w Witness) (*ProofResult, error) {
	f.called = true
	return &ProofResult{
		RawProofBytes: make([]byte, f.proofBytes),
		PublicInputs:  PublicInputs(w),
	}, nil
}

func TestFakeBackendsAgreeOnPublicInputsForSameWitness(t *testing.T) {
	ctx := context.Background()
	w := Witness{
		Operation:    OpWithdraw,
		Inputs:       []*note.Note{mustNote(t, 5)},
		MerkleRoot:   field.FromUint64(1),
		OutputAmount: field.FromUint64(5),
		Recipient:    field.FromUint64(2),
	}

	fakeInProcess := &fakeBackend{proofBytes: ProofSize}
	fakeRemote := &fakeBackend{proofBytes: ProofSize}

	resultA, err := fakeInProcess.Prove(ctx, w)
	if err != nil {
		t.Fatalf("in-process fake Prove: %v", err)
	}
	resultB, err := fakeRemote.Prove(ctx, w)
	if err != nil {
		t.Fatalf("remote fake Prove: %v", err)
	}

	if len(resultA.RawProofBytes) != len(resultB.RawProofBytes) {
		t.Fatalf("proof sizes differ: %d vs %d", len(resultA.RawProofBytes), len(resultB.RawProofBytes))
	}
	if len(resultA.PublicInputs) != len(resultB.PublicInputs) {
		t.Fatalf("public input counts differ: %d vs %d", len(resultA.PublicInputs), len(resultB.PublicInputs))
	}
	for i := range resultA.PublicInputs {
		if !resultA.PublicInputs[i].Equal(resultB.PublicInputs[i]) {
			t.Fatalf("public input %d differs between backends", i)
		}
	}
}

func TestOrchestratorRejectsNilBackend(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	ctx := context.Background()
	w := Witness{Operation: OpWithdraw}

	_, err := o.Prove(ctx, PreferInProcess, w)
	if err != poolerr.ErrProverUnavailable {
		t.Fatalf("err = %v, want ErrProverUnavailable", err)
	}

	_, err = o.Prove(ctx, PreferRemote, w)
	if err != poolerr.ErrProverUnavailable {
		t.Fatalf("err = %v, want ErrProverUnavailable", err)
	}
}

func TestOrchestratorRejectsUnknownPreference(t *testing.T) {
	o := NewOrchestrator(nil, nil)
	_, err := o.Prove(context.Background(), Preference("bogus"), Witness{})
	if err == nil {
		t.Fatal("expected an error for an unknown preference")
	}
}
