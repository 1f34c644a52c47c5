package scanner

import (
	"context"
	"fmt"

	"github.com/ccoin/privacypool/internal/derivation"
	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/note"
)

// Config tunes the scanner's candidate-index search. DefaultConfig's
// Margin and MinSearchSpace reproduce the source's hard-coded
// max(note_index + 100, 1000) bound, now exposed as a tunable per
// spec.md §9's open-question decision: callers trade scan cost against
// recovery horizon by adjusting Margin.
type Config struct {
	// Margin extends the search past the wallet's current note_index.
	Margin uint64
	// MinSearchSpace is the floor on the total candidate space
	// regardless of note_index, so a fresh wallet still recovers notes
	// generated out of order.
	MinSearchSpace uint64
}

// DefaultConfig returns the source's original bound: margin 100, floor
// 1000.
func DefaultConfig() Config {
	return Config{Margin: 100, MinSearchSpace: 1000}
}

// WalletView is the subset of wallet state the scanner reads and
// mutates. Implemented by *wallet.Wallet; declared narrowly here so the
// scanner package has no import-time dependency on wallet's full API.
type WalletView interface {
	Seed() field.Element
	NoteIndex() uint64
	ConfirmNote(ctx context.Context, n *note.Note, index uint64, leafIndex uint64) error
	MarkSpentOnChain(ctx context.Context, commitment field.Element) error
	LastScannedBlock() uint64
	SetLastScannedBlock(ctx context.Context, block uint64) error
}

// TreeAppender is the subset of the local Merkle tree the scanner
// mutates: newly matched commitments are absorbed locally so planner
// operations have an up-to-date root without waiting on a relay
// broadcast.
type TreeAppender interface {
	Append(ctx context.Context, leaf field.Element) (uint64, error)
}

// Scanner drives recovery of a wallet's notes from chain events.
type Scanner struct {
	contract ContractView
	tree     TreeAppender
	cfg      Config
}

// New creates a Scanner over contract and tree with cfg. A zero Config
// is treated as DefaultConfig.
func New(contract ContractView, tree TreeAppender, cfg Config) *Scanner {
	if cfg.Margin == 0 && cfg.MinSearchSpace == 0 {
		cfg = DefaultConfig()
	}
	return &Scanner{contract: contract, tree: tree, cfg: cfg}
}

// Sync fetches events since the wallet's last scanned block, matches
// each against the wallet's candidate derivation indices, absorbs
// matched commitments into the local tree, updates wallet state, and
// advances last_scanned_block. It is idempotent: re-running after a
// partial failure re-discovers the same events without double-counting
// (spec.md §5).
func (s *Scanner) Sync(ctx context.Context, w WalletView, upToBlock uint64) error {
	events, err := s.contract.EventsSince(ctx, w.LastScannedBlock())
	if err != nil {
		return fmt.Errorf("scanner: fetch events: %w", err)
	}

	searchSpace := w.NoteIndex() + s.cfg.Margin
	if searchSpace < s.cfg.MinSearchSpace {
		searchSpace = s.cfg.MinSearchSpace
	}

	var matched []note.Note
	var matchedIndex []uint64

	for _, ev := range events {
		idx, n, ok := matchCandidate(w.Seed(), ev.Commitment, ev.Amount, searchSpace)
		if !ok {
			continue // not ours
		}

		li := ev.LeafIndex
		n.LeafIndex = &li
		n.Timestamp = ev.BlockInfo.Timestamp

		if _, err := s.tree.Append(ctx, ev.Commitment); err != nil {
			return fmt.Errorf("scanner: absorb commitment: %w", err)
		}
		if err := w.ConfirmNote(ctx, &n, idx, ev.LeafIndex); err != nil {
			return fmt.Errorf("scanner: confirm note: %w", err)
		}

		matched = append(matched, n)
		matchedIndex = append(matchedIndex, idx)
	}

	if len(matched) > 0 {
		hashes := make([]field.Element, len(matched))
		for i := range matched {
			hashes[i] = note.NullifierHash(matched[i].Nullifier)
		}
		spent, err := s.contract.BatchNullifierSpent(ctx, hashes)
		if err != nil {
			return fmt.Errorf("scanner: batch nullifier check: %w", err)
		}
		for i, n := range matched {
			if spent[hashes[i].Decimal()] {
				if err := w.MarkSpentOnChain(ctx, n.Commitment); err != nil {
					return fmt.Errorf("scanner: mark spent: %w", err)
				}
			}
		}
	}

	return w.SetLastScannedBlock(ctx, upToBlock)
}

// matchCandidate searches derivation indices [0, searchSpace) for one
// whose (secret, nullifier) pair, combined with the announced amount,
// reproduces onChainCommitment. This is the core of spec.md §4.E: the
// wallet doesn't know a restored note's amount a priori, but the chain
// does, so re-derivation is tried against the announced amount and
// accepted only on an exact commitment match.
func matchCandidate(seed field.Element, onChainCommitment, amount field.Element, searchSpace uint64) (uint64, note.Note, bool) {
	for i := uint64(0); i < searchSpace; i++ {
		secret, nullifier := derivation.NoteSecretAndNullifier(seed, i)
		candidate := note.Commit(secret, nullifier, amount)
		if candidate.Equal(onChainCommitment) {
			n, err := note.FromParts(secret, nullifier, amount)
			if err != nil {
				continue
			}
			return i, *n, true
		}
	}
	return 0, note.Note{}, false
}
