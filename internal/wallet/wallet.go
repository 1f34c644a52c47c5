// Package wallet implements the pool's single-owner wallet state
// machine: note lifecycle, balance accounting, and atomic persistence,
// recoverable entirely from a signature plus the chain itself.
//
// Grounded on the teacher's (m1zr-ccoin) internal/zkp/transaction.go
// Note/ShieldedPool shape for the record-keeping side, and on
// internal/storage/postgres.go's connection/error-wrapping conventions
// for the persistence side — generalized from an on-chain shielded-pool
// note ledger into a client-side wallet ledger with a three-state
// lifecycle the teacher's Note (a bare Spent bool) does not model.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ccoin/privacypool/internal/derivation"
	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/note"
)

// Status is a note's position in its lifecycle (spec.md §4.F).
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusSpent     Status = "spent"
)

var (
	ErrUnknownNote      = errors.New("wallet: unknown note")
	ErrInvalidTransition = errors.New("wallet: invalid status transition")
)

// Record pairs a Note with its wallet-tracked lifecycle status and, once
// spent, an optional reference to the consuming transaction.
type Record struct {
	Note   *note.Note
	Index  uint64 // derivation index this note was generated/recovered at
	Status Status
	TxRef  string
}

// Balances summarizes the wallet's funds by lifecycle stage (spec.md
// §4.F: available = confirmed, pending = pending, total = both).
type Balances struct {
	Available field.Element
	Pending   field.Element
	Total     field.Element
}

// Wallet is the in-memory note ledger for a single seed. All mutation
// is serialized by mu, matching the teacher's ShieldedPool convention
// of a single exclusive lock guarding tree/nullifier state.
type Wallet struct {
	mu sync.Mutex

	seed            field.Element
	noteIndex       uint64
	records         map[string]*Record // keyed by commitment decimal string
	lastScannedBlock uint64

	store PersistenceStore
	id    string
}

// New creates a fresh wallet for seed, with no notes and no scan
// history.
func New(id string, seed field.Element, store PersistenceStore) *Wallet {
	return &Wallet{
		seed:    seed,
		records: make(map[string]*Record),
		store:   store,
		id:      id,
	}
}

// GenerateNote derives the next note in the wallet's deterministic
// stream for the given amount, records it as pending, and persists the
// mutation before returning.
func (w *Wallet) GenerateNote(ctx context.Context, amount field.Element) (*note.Note, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	index := w.noteIndex
	secret, nullifier := derivation.NoteSecretAndNullifier(w.seed, index)
	n, err := note.FromParts(secret, nullifier, amount)
	if err != nil {
		return nil, err
	}

	w.noteIndex++
	w.records[n.Commitment.Decimal()] = &Record{
		Note:   n,
		Index:  index,
		Status: StatusPending,
	}

	if err := w.persist(ctx); err != nil {
		return nil, err
	}
	return n, nil
}

// ConfirmNote transitions a note from pending (or records a previously
// unknown, scan-recovered note directly) to confirmed at leafIndex.
func (w *Wallet) ConfirmNote(ctx context.Context, n *note.Note, index uint64, leafIndex uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := n.Commitment.Decimal()
	rec, exists := w.records[key]
	if !exists {
		li := leafIndex
		n.LeafIndex = &li
		rec = &Record{Note: n, Index: index, Status: StatusConfirmed}
		w.records[key] = rec
	} else {
		li := leafIndex
		rec.Note.LeafIndex = &li
		// A spent note stays spent: only Resync demotes it.
		if rec.Status != StatusSpent {
			rec.Status = StatusConfirmed
		}
	}

	if index >= w.noteIndex {
		w.noteIndex = index + 1
	}

	return w.persist(ctx)
}

// MarkSpentOnChain records that a confirmed note's nullifier hash was
// observed in the chain's spent-nullifier set (discovered during a
// scan, not a local spend).
func (w *Wallet) MarkSpentOnChain(ctx context.Context, commitment field.Element) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, exists := w.records[commitment.Decimal()]
	if !exists {
		return ErrUnknownNote
	}
	rec.Status = StatusSpent
	return w.persist(ctx)
}

// MarkSpentLocally transitions a confirmed note to spent as the result
// of a locally constructed spend (transfer, withdraw, or
// consolidation), recording txRef for provenance.
func (w *Wallet) MarkSpentLocally(ctx context.Context, commitment field.Element, txRef string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, exists := w.records[commitment.Decimal()]
	if !exists {
		return ErrUnknownNote
	}
	if rec.Status != StatusConfirmed {
		return ErrInvalidTransition
	}
	rec.Status = StatusSpent
	rec.TxRef = txRef
	return w.persist(ctx)
}

// Resync allows a caller to explicitly revert a note previously marked
// spent back to confirmed, for the narrow case of a chain reorg
// un-spending a nullifier. This is never performed automatically: a
// wallet never demotes a note's status on its own, only on an explicit
// caller-driven resync call (see DESIGN.md's Open Question decision).
func (w *Wallet) Resync(ctx context.Context, commitment field.Element, status Status) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, exists := w.records[commitment.Decimal()]
	if !exists {
		return ErrUnknownNote
	}
	rec.Status = status
	return w.persist(ctx)
}

// Balances computes the wallet's current available/pending/total view.
func (w *Wallet) Balances() Balances {
	w.mu.Lock()
	defer w.mu.Unlock()

	available := field.Zero
	pending := field.Zero
	for _, rec := range w.records {
		switch rec.Status {
		case StatusConfirmed:
			available = available.Add(rec.Note.Amount)
		case StatusPending:
			pending = pending.Add(rec.Note.Amount)
		}
	}
	return Balances{
		Available: available,
		Pending:   pending,
		Total:     available.Add(pending),
	}
}

// ConfirmedNotes returns every confirmed note, ordered by ascending
// leaf index for deterministic selection by the spend planner.
func (w *Wallet) ConfirmedNotes() []*note.Note {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []*note.Note
	for _, rec := range w.records {
		if rec.Status == StatusConfirmed {
			out = append(out, rec.Note)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return *out[i].LeafIndex < *out[j].LeafIndex
	})
	return out
}

// NoteIndex returns the next derivation index to be used by
// GenerateNote, and the highest index the scanner should search past.
func (w *Wallet) NoteIndex() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.noteIndex
}

// LastScannedBlock returns the block height the scanner last completed.
func (w *Wallet) LastScannedBlock() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastScannedBlock
}

// SetLastScannedBlock records scan progress and persists it.
func (w *Wallet) SetLastScannedBlock(ctx context.Context, block uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastScannedBlock = block
	return w.persist(ctx)
}

// Seed exposes the wallet's master seed, which the scanner uses to
// re-derive candidate notes; see the derivation package's determinism
// guarantee.
func (w *Wallet) Seed() field.Element {
	return w.seed
}

// ClaimCommitment derives the (claim_secret, claim_commitment) pair for
// auction slot slotID from this wallet's seed (spec.md §3, §4.D). The
// caller hands claim_secret to the bidder out of band and passes
// claim_commitment as the outputCommitment argument to
// planner.PrepareTransfer, letting an operator post a note payable to
// the bidder without the bidder's wallet ever appearing on-chain.
func (w *Wallet) ClaimCommitment(slotID uint64) (claimSecret, claimCommitment field.Element) {
	return derivation.ClaimCredential(w.seed, slotID)
}

func (w *Wallet) persist(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	blob, err := w.serializeLocked()
	if err != nil {
		return fmt.Errorf("wallet: serialize: %w", err)
	}
	if err := w.store.SaveBlob(ctx, w.id, blob); err != nil {
		return fmt.Errorf("wallet: persist: %w", err)
	}
	return nil
}
