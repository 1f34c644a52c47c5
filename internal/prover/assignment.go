package prover

import (
	"github.com/consensys/gnark/frontend"

	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/merkletree"
	"github.com/ccoin/privacypool/internal/note"
)

// fieldVar lifts a field.Element into a gnark frontend.Variable via its
// canonical decimal representation, the same boundary encoding used at
// the remote prover's wire format.
func fieldVar(e field.Element) frontend.Variable {
	return frontend.Variable(e.Decimal())
}

// fieldH1 computes a note's nullifier hash as a field element.
func fieldH1(n *note.Note) field.Element {
	return note.NullifierHash(n.Nullifier)
}

// siblingVars converts a merkletree.Proof's siblings into circuit
// variables.
func siblingVars(p *merkletree.Proof) [merkletree.Depth]frontend.Variable {
	var out [merkletree.Depth]frontend.Variable
	for i, s := range p.Siblings {
		out[i] = fieldVar(s)
	}
	return out
}

// indexVars converts a merkletree.Proof's index bits into circuit
// variables (0 or 1).
func indexVars(p *merkletree.Proof) [merkletree.Depth]frontend.Variable {
	var out [merkletree.Depth]frontend.Variable
	for i, bit := range p.Indices {
		if bit {
			out[i] = frontend.Variable(1)
		} else {
			out[i] = frontend.Variable(0)
		}
	}
	return out
}
