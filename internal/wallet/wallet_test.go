package wallet

import (
	"context"
	"testing"

	"github.com/ccoin/privacypool/internal/derivation"
	"github.com/ccoin/privacypool/internal/field"
)

func TestGenerateNoteIsPending(t *testing.T) {
	ctx := context.Background()
	w := New("w1", field.FromUint64(1), nil)

	n, err := w.GenerateNote(ctx, field.FromUint64(100))
	if err != nil {
		t.Fatalf("GenerateNote: %v", err)
	}

	bal := w.Balances()
	if !bal.Pending.Equal(field.FromUint64(100)) {
		t.Fatalf("pending = %s, want 100", bal.Pending)
	}
	if !bal.Available.IsZero() {
		t.Fatal("available should be zero before confirmation")
	}
	if n.IsPlaced() {
		t.Fatal("freshly generated note must not be placed")
	}
}

func TestConfirmNoteMovesToAvailable(t *testing.T) {
	ctx := context.Background()
	w := New("w1", field.FromUint64(1), nil)

	n, err := w.GenerateNote(ctx, field.FromUint64(50))
	if err != nil {
		t.Fatalf("GenerateNote: %v", err)
	}

	if err := w.ConfirmNote(ctx, n, 0, 7); err != nil {
		t.Fatalf("ConfirmNote: %v", err)
	}

	bal := w.Balances()
	if !bal.Available.Equal(field.FromUint64(50)) {
		t.Fatalf("available = %s, want 50", bal.Available)
	}
	if !bal.Pending.IsZero() {
		t.Fatal("pending should be zero after confirmation")
	}

	notes := w.ConfirmedNotes()
	if len(notes) != 1 || *notes[0].LeafIndex != 7 {
		t.Fatalf("unexpected confirmed notes: %+v", notes)
	}
}

func TestMarkSpentLocallyRejectsNonConfirmed(t *testing.T) {
	ctx := context.Background()
	w := New("w1", field.FromUint64(1), nil)

	n, err := w.GenerateNote(ctx, field.FromUint64(10))
	if err != nil {
		t.Fatalf("GenerateNote: %v", err)
	}

	if err := w.MarkSpentLocally(ctx, n.Commitment, "tx1"); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestMarkSpentLocallyAfterConfirm(t *testing.T) {
	ctx := context.Background()
	w := New("w1", field.FromUint64(1), nil)

	n, err := w.GenerateNote(ctx, field.FromUint64(10))
	if err != nil {
		t.Fatalf("GenerateNote: %v", err)
	}
	if err := w.ConfirmNote(ctx, n, 0, 0); err != nil {
		t.Fatalf("ConfirmNote: %v", err)
	}
	if err := w.MarkSpentLocally(ctx, n.Commitment, "tx1"); err != nil {
		t.Fatalf("MarkSpentLocally: %v", err)
	}

	bal := w.Balances()
	if !bal.Available.IsZero() || !bal.Total.IsZero() {
		t.Fatal("spent note must not count toward any balance")
	}
}

func TestResyncRevertsSpentToConfirmed(t *testing.T) {
	ctx := context.Background()
	w := New("w1", field.FromUint64(1), nil)

	n, err := w.GenerateNote(ctx, field.FromUint64(10))
	if err != nil {
		t.Fatalf("GenerateNote: %v", err)
	}
	if err := w.ConfirmNote(ctx, n, 0, 0); err != nil {
		t.Fatalf("ConfirmNote: %v", err)
	}
	if err := w.MarkSpentLocally(ctx, n.Commitment, "tx1"); err != nil {
		t.Fatalf("MarkSpentLocally: %v", err)
	}

	if err := w.Resync(ctx, n.Commitment, StatusConfirmed); err != nil {
		t.Fatalf("Resync: %v", err)
	}
	bal := w.Balances()
	if !bal.Available.Equal(field.FromUint64(10)) {
		t.Fatal("resync should restore the note to available balance")
	}
}

func TestPersistenceRoundTripViaFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	w := New("alice", field.FromUint64(99), store)
	n, err := w.GenerateNote(ctx, field.FromUint64(25))
	if err != nil {
		t.Fatalf("GenerateNote: %v", err)
	}
	if err := w.ConfirmNote(ctx, n, 0, 3); err != nil {
		t.Fatalf("ConfirmNote: %v", err)
	}

	loaded, err := Load(ctx, "alice", store)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	bal := loaded.Balances()
	if !bal.Available.Equal(field.FromUint64(25)) {
		t.Fatalf("loaded available = %s, want 25", bal.Available)
	}
	if loaded.NoteIndex() != 1 {
		t.Fatalf("loaded note index = %d, want 1", loaded.NoteIndex())
	}
}

func TestClaimCommitmentMatchesDerivationPackage(t *testing.T) {
	seed := field.FromUint64(99)
	w := New("alice", seed, nil)

	gotSecret, gotCommitment := w.ClaimCommitment(4)
	wantSecret, wantCommitment := derivation.ClaimCredential(seed, 4)

	if !gotSecret.Equal(wantSecret) {
		t.Fatal("Wallet.ClaimCommitment's secret must match derivation.ClaimCredential")
	}
	if !gotCommitment.Equal(wantCommitment) {
		t.Fatal("Wallet.ClaimCommitment's commitment must match derivation.ClaimCredential")
	}
}
