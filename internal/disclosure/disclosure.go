package disclosure

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/note"
	"github.com/ccoin/privacypool/internal/prover"
)

// Type names the fact a Disclosure proves, mirroring the teacher's
// DisclosureType enum. Identity/sanctions/threshold/source variants
// the teacher sketches but never wires to a circuit are not carried
// forward here — only range and temporal have a concrete circuit this
// module can exercise (internal/prover's RangeCircuit/TemporalCircuit).
type Type uint8

const (
	TypeNone Type = iota
	TypeRange
	TypeTemporal
)

// Flags are a bitmask of which disclosures a counterparty requires
// before accepting a payment — e.g. an exchange's deposit address
// requiring a range disclosure under its reporting threshold.
type Flags uint32

const (
	FlagNone          Flags = 0
	FlagRangeRequired Flags = 1 << 0
	FlagTemporalRequired Flags = 1 << 1
)

var (
	ErrRequirementFailed = errors.New("disclosure: underlying fact does not hold")
	ErrProofSizeMismatch = errors.New("disclosure: proof size mismatch")
)

// RangeDisclosure proves a note's amount lies in [Min, Max] without
// revealing the amount.
type RangeDisclosure struct {
	Commitment field.Element
	Min        uint64
	Max        uint64
	Proof      []byte
}

// TemporalDisclosure proves a note has been held since before some
// time without revealing which note.
type TemporalDisclosure struct {
	Commitment   field.Element
	CreationTime uint64
	ProofTime    uint64
	MinDuration  uint64
	Proof        []byte
}

// compiled bundles a compiled circuit with its Groth16 keys, compiled
// lazily on first use — the same lazy-compile shape as
// internal/prover.InProcessBackend, kept separate since disclosure
// circuits have a different public-input shape.
type compiled struct {
	ccs frontend.CompiledConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

// Manager creates and verifies disclosures. It owns its own compiled
// circuits rather than sharing internal/prover's Orchestrator, keeping
// disclosure fully decoupled from the spend path (spec.md's planner and
// prover never import this package).
type Manager struct {
	mu          sync.Mutex
	rangeCC     *compiled
	temporalCC  *compiled
}

// NewManager creates a disclosure manager with no circuits compiled
// yet.
func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) getRangeCircuit() (*compiled, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rangeCC != nil {
		return m.rangeCC, nil
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &prover.RangeCircuit{})
	if err != nil {
		return nil, fmt.Errorf("disclosure: compile range circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("disclosure: setup range circuit: %w", err)
	}
	m.rangeCC = &compiled{ccs: ccs, pk: pk, vk: vk}
	return m.rangeCC, nil
}

func (m *Manager) getTemporalCircuit() (*compiled, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.temporalCC != nil {
		return m.temporalCC, nil
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &prover.TemporalCircuit{})
	if err != nil {
		return nil, fmt.Errorf("disclosure: compile temporal circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("disclosure: setup temporal circuit: %w", err)
	}
	m.temporalCC = &compiled{ccs: ccs, pk: pk, vk: vk}
	return m.temporalCC, nil
}

// CreateRangeDisclosure proves n's amount lies in [min, max].
func (m *Manager) CreateRangeDisclosure(ctx context.Context, n *note.Note, min, max uint64) (*RangeDisclosure, error) {
	amount := n.Amount.BigInt().Uint64()
	if amount < min || amount > max {
		return nil, ErrRequirementFailed
	}

	cc, err := m.getRangeCircuit()
	if err != nil {
		return nil, err
	}

	assignment := &prover.RangeCircuit{
		Commitment: fv(n.Commitment),
		Min:        frontend.Variable(min),
		Max:        frontend.Variable(max),
		Secret:     fv(n.Secret),
		Nullifier:  fv(n.Nullifier),
		Amount:     fv(n.Amount),
	}

	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("disclosure: build witness: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	proof, err := groth16.Prove(cc.ccs, cc.pk, fullWitness)
	if err != nil {
		return nil, fmt.Errorf("disclosure: prove range: %w", err)
	}

	proofBytes, err := proof.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("disclosure: marshal proof: %w", err)
	}
	if len(proofBytes) != prover.ProofSize {
		return nil, ErrProofSizeMismatch
	}

	return &RangeDisclosure{
		Commitment: n.Commitment,
		Min:        min,
		Max:        max,
		Proof:      proofBytes,
	}, nil
}

// CreateTemporalDisclosure proves n has been held since creationTime,
// at least minDuration before currentTime.
func (m *Manager) CreateTemporalDisclosure(ctx context.Context, n *note.Note, creationTime, currentTime, minDuration uint64) (*TemporalDisclosure, error) {
	if currentTime < creationTime || currentTime-creationTime < minDuration {
		return nil, ErrRequirementFailed
	}

	cc, err := m.getTemporalCircuit()
	if err != nil {
		return nil, err
	}

	assignment := &prover.TemporalCircuit{
		Commitment:   fv(n.Commitment),
		CreationTime: frontend.Variable(creationTime),
		CurrentTime:  frontend.Variable(currentTime),
		MinDuration:  frontend.Variable(minDuration),
		Secret:       fv(n.Secret),
		Nullifier:    fv(n.Nullifier),
		Amount:       fv(n.Amount),
	}

	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("disclosure: build witness: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	proof, err := groth16.Prove(cc.ccs, cc.pk, fullWitness)
	if err != nil {
		return nil, fmt.Errorf("disclosure: prove temporal: %w", err)
	}

	proofBytes, err := proof.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("disclosure: marshal proof: %w", err)
	}
	if len(proofBytes) != prover.ProofSize {
		return nil, ErrProofSizeMismatch
	}

	return &TemporalDisclosure{
		Commitment:   n.Commitment,
		CreationTime: creationTime,
		ProofTime:    currentTime,
		MinDuration:  minDuration,
		Proof:        proofBytes,
	}, nil
}

// VerifyRangeDisclosure checks d.Proof against the public (commitment,
// min, max) triple.
func (m *Manager) VerifyRangeDisclosure(ctx context.Context, d *RangeDisclosure) (bool, error) {
	cc, err := m.getRangeCircuit()
	if err != nil {
		return false, err
	}

	public := &prover.RangeCircuit{
		Commitment: fv(d.Commitment),
		Min:        frontend.Variable(d.Min),
		Max:        frontend.Variable(d.Max),
	}
	publicWitness, err := frontend.NewWitness(public, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("disclosure: build public witness: %w", err)
	}

	proof := groth16.NewProof(ecc.BN254)
	if err := proof.UnmarshalBinary(d.Proof); err != nil {
		return false, fmt.Errorf("disclosure: decode proof: %w", err)
	}

	if err := groth16.Verify(proof, cc.vk, publicWitness); err != nil {
		return false, nil
	}
	return true, nil
}

// VerifyTemporalDisclosure checks d.Proof against its public fields.
func (m *Manager) VerifyTemporalDisclosure(ctx context.Context, d *TemporalDisclosure) (bool, error) {
	cc, err := m.getTemporalCircuit()
	if err != nil {
		return false, err
	}

	public := &prover.TemporalCircuit{
		Commitment:   fv(d.Commitment),
		CreationTime: frontend.Variable(d.CreationTime),
		CurrentTime:  frontend.Variable(d.ProofTime),
		MinDuration:  frontend.Variable(d.MinDuration),
	}
	publicWitness, err := frontend.NewWitness(public, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("disclosure: build public witness: %w", err)
	}

	proof := groth16.NewProof(ecc.BN254)
	if err := proof.UnmarshalBinary(d.Proof); err != nil {
		return false, fmt.Errorf("disclosure: decode proof: %w", err)
	}

	if err := groth16.Verify(proof, cc.vk, publicWitness); err != nil {
		return false, nil
	}
	return true, nil
}

// fv lifts a field.Element into a gnark frontend.Variable via its
// canonical decimal representation.
func fv(e field.Element) frontend.Variable {
	return frontend.Variable(e.Decimal())
}
