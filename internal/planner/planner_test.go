package planner

import (
	"context"
	"testing"

	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/merkletree"
	"github.com/ccoin/privacypool/internal/note"
	"github.com/ccoin/privacypool/internal/poolerr"
)

// confirmedNote builds a note already placed at leafIndex and appends
// its commitment to tree, for test fixtures that need planner-ready
// confirmed notes.
func confirmedNote(t *testing.T, ctx context.Context, tree *merkletree.Tree, amount field.Element) *note.Note {
	t.Helper()
	n, err := note.Generate(amount)
	if err != nil {
		t.Fatalf("note.Generate: %v", err)
	}
	idx, err := tree.Append(ctx, n.Commitment)
	if err != nil {
		t.Fatalf("tree.Append: %v", err)
	}
	n.LeafIndex = &idx
	return n
}

func stubMintChange(t *testing.T) ChangeNoteFactory {
	return func(ctx context.Context, amount field.Element) (*note.Note, error) {
		return note.FromParts(field.FromUint64(1), field.FromUint64(2), amount)
	}
}

func TestPrepareTransferWithChange(t *testing.T) {
	ctx := context.Background()
	tree := merkletree.New(merkletree.NewInMemoryStore())

	n := confirmedNote(t, ctx, tree, field.FromUint64(100))

	result, err := PrepareTransfer(ctx, []*note.Note{n}, tree, field.FromUint64(40), field.FromUint64(999), stubMintChange(t))
	if err != nil {
		t.Fatalf("PrepareTransfer: %v", err)
	}

	if result.Change == nil {
		t.Fatal("expected a change note for a partial spend")
	}
	if !result.Change.Amount.Equal(field.FromUint64(60)) {
		t.Fatalf("change amount = %s, want 60", result.Change.Amount)
	}

	// Conservation: input.amount == output_amount + change_amount.
	sum := result.OutputAmount.Add(result.Change.Amount)
	if !sum.Equal(n.Amount) {
		t.Fatalf("conservation violated: %s + %s != %s", result.OutputAmount, result.Change.Amount, n.Amount)
	}
}

func TestPrepareTransferExactNoChange(t *testing.T) {
	ctx := context.Background()
	tree := merkletree.New(merkletree.NewInMemoryStore())

	n := confirmedNote(t, ctx, tree, field.FromUint64(50))

	result, err := PrepareTransfer(ctx, []*note.Note{n}, tree, field.FromUint64(50), field.FromUint64(1), stubMintChange(t))
	if err != nil {
		t.Fatalf("PrepareTransfer: %v", err)
	}
	if result.Change != nil {
		t.Fatal("expected no change note for an exact-amount spend")
	}
}

func TestPrepareTransferSelectsSmallestCovering(t *testing.T) {
	ctx := context.Background()
	tree := merkletree.New(merkletree.NewInMemoryStore())

	small := confirmedNote(t, ctx, tree, field.FromUint64(30))
	big := confirmedNote(t, ctx, tree, field.FromUint64(200))
	_ = big

	result, err := PrepareTransfer(ctx, []*note.Note{big, small}, tree, field.FromUint64(20), field.FromUint64(1), stubMintChange(t))
	if err != nil {
		t.Fatalf("PrepareTransfer: %v", err)
	}
	if !result.Input.Note.Commitment.Equal(small.Commitment) {
		t.Fatal("expected the smallest covering note (30), not the larger one (200)")
	}
}

func TestPrepareTransferInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	tree := merkletree.New(merkletree.NewInMemoryStore())

	n := confirmedNote(t, ctx, tree, field.FromUint64(10))

	_, err := PrepareTransfer(ctx, []*note.Note{n}, tree, field.FromUint64(100), field.FromUint64(1), stubMintChange(t))
	if err != poolerr.ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestPrepareWithdrawNoChange(t *testing.T) {
	ctx := context.Background()
	tree := merkletree.New(merkletree.NewInMemoryStore())

	n := confirmedNote(t, ctx, tree, field.FromUint64(75))

	result, err := PrepareWithdraw(ctx, []*note.Note{n}, tree, field.FromUint64(75))
	if err != nil {
		t.Fatalf("PrepareWithdraw: %v", err)
	}
	if !result.Amount.Equal(n.Amount) {
		t.Fatal("withdraw must redeem the entire note")
	}
}

func TestPrepareConsolidationConservesValue(t *testing.T) {
	ctx := context.Background()
	tree := merkletree.New(merkletree.NewInMemoryStore())

	a := confirmedNote(t, ctx, tree, field.FromUint64(10))
	b := confirmedNote(t, ctx, tree, field.FromUint64(20))
	c := confirmedNote(t, ctx, tree, field.FromUint64(30))

	result, err := PrepareConsolidation(ctx, []*note.Note{a, b, c}, tree, stubMintChange(t))
	if err != nil {
		t.Fatalf("PrepareConsolidation: %v", err)
	}
	if len(result.Inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(result.Inputs))
	}
	if !result.Output.Amount.Equal(field.FromUint64(60)) {
		t.Fatalf("output amount = %s, want 60", result.Output.Amount)
	}
}

func TestPrepareConsolidationRejectsSingleNote(t *testing.T) {
	ctx := context.Background()
	tree := merkletree.New(merkletree.NewInMemoryStore())

	a := confirmedNote(t, ctx, tree, field.FromUint64(10))

	_, err := PrepareConsolidation(ctx, []*note.Note{a}, tree, stubMintChange(t))
	if err != poolerr.ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance for a single-note consolidation, got %v", err)
	}
}
