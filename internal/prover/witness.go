package prover

import (
	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/merkletree"
	"github.com/ccoin/privacypool/internal/note"
	"github.com/ccoin/privacypool/internal/planner"
)

// WitnessFromWithdraw converts the spend planner's prepared withdraw
// material into a Witness, binding recipient (not part of
// planner.WithdrawInputs since the planner only selects notes and
// proves membership; the recipient address is a caller-supplied public
// binder, per spec.md §4.G/§4.H).
func WitnessFromWithdraw(in *planner.WithdrawInputs, recipient field.Element) Witness {
	return Witness{
		Operation:    OpWithdraw,
		Inputs:       []*note.Note{in.Input.Note},
		MerkleProof:  []*merkletree.Proof{in.Input.Proof},
		MerkleRoot:   in.Root,
		Recipient:    recipient,
		OutputAmount: in.Amount,
	}
}

// WitnessFromTransfer converts the spend planner's prepared transfer
// material into a Witness. in.Change is carried through verbatim —
// PublicInputs and buildAssignment both already treat a nil Change as
// the zero-change case.
func WitnessFromTransfer(in *planner.TransferInputs) Witness {
	return Witness{
		Operation:        OpTransfer,
		Inputs:           []*note.Note{in.Input.Note},
		MerkleProof:      []*merkletree.Proof{in.Input.Proof},
		MerkleRoot:       in.Root,
		OutputAmount:     in.OutputAmount,
		OutputCommitment: in.OutputCommitment,
		Change:           in.Change,
	}
}

// WitnessFromConsolidation converts the spend planner's prepared
// consolidation material into a Witness, carrying the minted output
// note through as Output so buildAssignment can bind its real
// secret/nullifier instead of a placeholder (see ConsolidationCircuit.Define,
// which recomputes the output commitment from them).
func WitnessFromConsolidation(in *planner.ConsolidationInputs) Witness {
	inputs := make([]*note.Note, len(in.Inputs))
	proofs := make([]*merkletree.Proof, len(in.Inputs))
	for i, ip := range in.Inputs {
		inputs[i] = ip.Note
		proofs[i] = ip.Proof
	}
	return Witness{
		Operation:        OpConsolidation,
		Inputs:           inputs,
		MerkleProof:      proofs,
		MerkleRoot:       in.Root,
		OutputAmount:     in.Output.Amount,
		OutputCommitment: in.Output.Commitment,
		Output:           in.Output,
	}
}
