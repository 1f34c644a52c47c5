// Package scanner implements chain scanning: recovering confirmed notes
// and spent status from on-chain events without trusting any locally
// persisted state, by re-deriving candidate notes from the wallet's
// deterministic seed (spec.md §4.E).
//
// Grounded on the teacher's (m1zr-ccoin) internal/p2p/node.go
// subscription/handler shape for the event-stream side, and on
// internal/zkp/nullifier.go's NullifierStore interface for the
// batch-spent-check side — generalized from a block/transaction gossip
// consumer into a deposit/note-creation event consumer that drives
// note recovery rather than chain-state replication.
package scanner

import (
	"context"

	"github.com/ccoin/privacypool/internal/field"
)

// DepositEvent is one deposit/note-creation event the contract emits,
// exactly the shape spec.md §4.E and §6 describe.
type DepositEvent struct {
	Commitment field.Element
	Amount     field.Element
	LeafIndex  uint64
	BlockInfo  BlockInfo
}

// BlockInfo is the minimal chain-position metadata an event carries.
type BlockInfo struct {
	Height    uint64
	Timestamp uint64
}

// ContractView is the read-only surface of the contract the scanner
// consumes (spec.md §6's view/stream subset).
type ContractView interface {
	// EventsSince returns deposit/note-creation events strictly after
	// fromBlock, in ascending block order.
	EventsSince(ctx context.Context, fromBlock uint64) ([]DepositEvent, error)

	// BatchNullifierSpent checks many nullifier hashes in one round
	// trip where the contract exposes a batch view (spec.md §4.E).
	BatchNullifierSpent(ctx context.Context, hashes []field.Element) (map[string]bool, error)
}
