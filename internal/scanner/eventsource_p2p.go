package scanner

import (
	"context"
	"fmt"

	"github.com/ccoin/privacypool/internal/relay"
	"github.com/libp2p/go-libp2p/core/peer"
)

// Watcher triggers a Sync whenever the relay gossip surfaces a deposit,
// spend, or root-update event, instead of polling ContractView on a
// fixed interval. It does not itself answer EventsSince/
// BatchNullifierSpent — relay gossip carries no amount field (a
// deposit's amount is chain state, not gossip payload; see
// internal/relay's DepositEvent), so a full recovery scan still reads
// through the wallet's ContractView. The relay only shortens the delay
// between an event landing on-chain and the next Sync call.
type Watcher struct {
	scanner *Scanner
	wallet  WalletView
	node    *relay.Node

	onBlock func(ctx context.Context) (uint64, error)
}

// NewWatcher wires s to react to relay gossip on node. onBlock must
// return the chain height to scan up to (callers typically fetch this
// from the same RPC endpoint their ContractView uses).
func NewWatcher(s *Scanner, w WalletView, node *relay.Node, onBlock func(ctx context.Context) (uint64, error)) *Watcher {
	watch := &Watcher{scanner: s, wallet: w, node: node, onBlock: onBlock}

	node.OnDeposit(watch.handle)
	node.OnSpend(watch.handle)
	node.OnRootUpdate(watch.handle)

	return watch
}

// handle re-triggers a full Sync on any gossip event. Events themselves
// are not parsed for recovery purposes; they are purely a "something
// changed" signal.
func (w *Watcher) handle(ctx context.Context, _ peer.ID, _ []byte) error {
	block, err := w.onBlock(ctx)
	if err != nil {
		return fmt.Errorf("scanner: watcher resolve block height: %w", err)
	}
	if err := w.scanner.Sync(ctx, w.wallet, block); err != nil {
		return fmt.Errorf("scanner: watcher sync: %w", err)
	}
	return nil
}
