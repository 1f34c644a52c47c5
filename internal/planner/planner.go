// Package planner implements the spend planner: turning a spend intent
// (transfer, withdraw, consolidation) into the concrete note
// selections, change notes, and membership proofs a prover needs,
// without ever constructing a proof itself.
//
// Grounded on the teacher's (m1zr-ccoin) internal/zkp/transaction.go
// TransactionBuilder — the same input/output/fee/conservation shape —
// generalized from a builder that assembles an on-chain Transaction
// into one that assembles prover witnesses, and from the teacher's
// arbitrary multi-input/multi-output note selection into spec.md
// §4.G's smallest-confirmed-note-≥-requested selection policy.
package planner

import (
	"context"
	"sort"

	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/merkletree"
	"github.com/ccoin/privacypool/internal/note"
	"github.com/ccoin/privacypool/internal/poolerr"
)

// InputPlan is one note being spent: the note itself, its membership
// proof against the current local root, and its nullifier hash.
type InputPlan struct {
	Note          *note.Note
	Proof         *merkletree.Proof
	NullifierHash field.Element
}

// TransferInputs is the result of prepare_transfer.
type TransferInputs struct {
	Input            InputPlan
	Change           *note.Note // nil when change is exactly zero
	OutputCommitment field.Element
	OutputAmount     field.Element
	Root             field.Element
}

// WithdrawInputs is the result of prepare_withdraw.
type WithdrawInputs struct {
	Input  InputPlan
	Amount field.Element
	Root   field.Element
}

// ConsolidationInputs is the result of prepare_consolidation.
type ConsolidationInputs struct {
	Inputs []InputPlan
	Output *note.Note
	Root   field.Element
}

// TreeView is the read-only subset of the Merkle tree the planner
// needs: a root and membership proofs against it.
type TreeView interface {
	Root() field.Element
	Proof(ctx context.Context, leafIndex uint64) (*merkletree.Proof, error)
}

// ChangeNoteFactory mints a fresh note for the given amount, supplied by
// the wallet so the planner never reaches into derivation or random
// generation directly.
type ChangeNoteFactory func(ctx context.Context, amount field.Element) (*note.Note, error)

// selectSmallestCovering implements spec.md §4.G's selection policy:
// the smallest confirmed note whose amount is >= requested, breaking
// ties by ascending leaf index. Notes must already be confirmed and
// carry a non-nil LeafIndex; callers filter by status before calling.
func selectSmallestCovering(notes []*note.Note, requested field.Element) (*note.Note, error) {
	var candidates []*note.Note
	for _, n := range notes {
		if n.Amount.Cmp(requested) >= 0 {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return nil, poolerr.ErrInsufficientBalance
	}

	sort.Slice(candidates, func(i, j int) bool {
		cmp := candidates[i].Amount.Cmp(candidates[j].Amount)
		if cmp != 0 {
			return cmp < 0
		}
		return *candidates[i].LeafIndex < *candidates[j].LeafIndex
	})
	return candidates[0], nil
}

func buildInputPlan(ctx context.Context, tree TreeView, n *note.Note) (InputPlan, error) {
	proof, err := tree.Proof(ctx, *n.LeafIndex)
	if err != nil {
		return InputPlan{}, err
	}
	return InputPlan{
		Note:          n,
		Proof:         proof,
		NullifierHash: note.NullifierHash(n.Nullifier),
	}, nil
}

// PrepareTransfer selects a single confirmed note covering outputAmount
// and assembles the witness material for a transfer. When the selected
// note's amount exceeds outputAmount, mintChange is invoked to derive
// a change note for the remainder; no change note is minted when the
// remainder is exactly zero.
func PrepareTransfer(
	ctx context.Context,
	confirmed []*note.Note,
	tree TreeView,
	outputAmount field.Element,
	outputCommitment field.Element,
	mintChange ChangeNoteFactory,
) (*TransferInputs, error) {
	selected, err := selectSmallestCovering(confirmed, outputAmount)
	if err != nil {
		return nil, err
	}

	input, err := buildInputPlan(ctx, tree, selected)
	if err != nil {
		return nil, err
	}

	changeAmount := selected.Amount.Sub(outputAmount)

	var change *note.Note
	if !changeAmount.IsZero() {
		change, err = mintChange(ctx, changeAmount)
		if err != nil {
			return nil, err
		}
	}

	return &TransferInputs{
		Input:            input,
		Change:           change,
		OutputCommitment: outputCommitment,
		OutputAmount:     outputAmount,
		Root:             tree.Root(),
	}, nil
}

// PrepareWithdraw selects a single confirmed note covering amount and
// assembles the witness material for a full-note withdrawal (no
// change: the entire note is redeemed).
func PrepareWithdraw(
	ctx context.Context,
	confirmed []*note.Note,
	tree TreeView,
	amount field.Element,
) (*WithdrawInputs, error) {
	selected, err := selectSmallestCovering(confirmed, amount)
	if err != nil {
		return nil, err
	}

	input, err := buildInputPlan(ctx, tree, selected)
	if err != nil {
		return nil, err
	}

	return &WithdrawInputs{
		Input:  input,
		Amount: selected.Amount,
		Root:   tree.Root(),
	}, nil
}

// PrepareConsolidation merges k >= 2 confirmed notes into a single
// fresh output note for their summed amount. All supplied notes are
// spent unconditionally; the caller has already decided which ones.
func PrepareConsolidation(
	ctx context.Context,
	notes []*note.Note,
	tree TreeView,
	mintOutput ChangeNoteFactory,
) (*ConsolidationInputs, error) {
	if len(notes) < 2 {
		return nil, poolerr.ErrInsufficientBalance
	}

	sum := field.Zero
	inputs := make([]InputPlan, 0, len(notes))
	for _, n := range notes {
		input, err := buildInputPlan(ctx, tree, n)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
		sum = sum.Add(n.Amount)
	}

	output, err := mintOutput(ctx, sum)
	if err != nil {
		return nil, err
	}

	return &ConsolidationInputs{
		Inputs: inputs,
		Output: output,
		Root:   tree.Root(),
	}, nil
}
