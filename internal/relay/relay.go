// Package relay implements a gossip transport for pool events: deposit
// announcements (a new commitment entering the tree), spend
// announcements (a nullifier hash published), and root-update
// announcements, so wallets can stay synced without polling a full
// node directly.
//
// Adapted from the teacher's (m1zr-ccoin) internal/p2p/node.go: the
// same libp2p host + GossipSub topic/subscription/handler shape,
// repointed from block/transaction/task topics onto the three pool
// event topics this domain needs. The teacher's DHT-based peer
// discovery and sync protocol (internal/p2p/sync.go) are dropped here —
// the pool relay is a pure event-transport layer, not a chain
// synchronization protocol; see DESIGN.md.
package relay

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
)

// Topic names for the pool's three gossip channels.
const (
	DepositTopic     = "privacypool/deposits"
	SpendTopic       = "privacypool/spends"
	RootUpdateTopic  = "privacypool/root-updates"
	protocolIDSuffix = "/privacypool/1.0.0"
)

// EventHandler processes a decoded event from a gossip message.
type EventHandler func(ctx context.Context, from peer.ID, payload []byte) error

// Config holds relay node configuration.
type Config struct {
	ListenAddrs []string
	PrivateKey  crypto.PrivKey
	MaxPeers    int
}

// DefaultConfig returns default relay configuration, mirroring the
// teacher's p2p.DefaultConfig defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddrs: []string{"/ip4/0.0.0.0/tcp/9100"},
		MaxPeers:    50,
	}
}

// Node is a pool relay participant: a libp2p host joined to the three
// event topics, dispatching incoming messages to registered handlers.
type Node struct {
	mu sync.RWMutex

	host   host.Host
	pubsub *pubsub.PubSub

	depositTopic    *pubsub.Topic
	spendTopic      *pubsub.Topic
	rootUpdateTopic *pubsub.Topic

	depositSub    *pubsub.Subscription
	spendSub      *pubsub.Subscription
	rootUpdateSub *pubsub.Subscription

	depositHandler    EventHandler
	spendHandler      EventHandler
	rootUpdateHandler EventHandler

	peers    map[peer.ID]time.Time
	maxPeers int

	ctx    context.Context
	cancel context.CancelFunc
}

// NewNode creates a relay node, joins the three pool topics, and
// begins tracking connected peers. Callers attach handlers with
// OnDeposit/OnSpend/OnRootUpdate before calling Start.
func NewNode(ctx context.Context, cfg *Config) (*Node, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	nodeCtx, cancel := context.WithCancel(ctx)

	privKey := cfg.PrivateKey
	if privKey == nil {
		var err error
		privKey, _, err = crypto.GenerateKeyPairWithReader(crypto.Ed25519, -1, rand.Reader)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("relay: generate key: %w", err)
		}
	}

	listenAddrs := make([]multiaddr.Multiaddr, len(cfg.ListenAddrs))
	for i, addr := range cfg.ListenAddrs {
		ma, err := multiaddr.NewMultiaddr(addr)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("relay: invalid listen address: %w", err)
		}
		listenAddrs[i] = ma
	}

	h, err := libp2p.New(
		libp2p.Identity(privKey),
		libp2p.ListenAddrs(listenAddrs...),
		libp2p.EnableNATService(),
		libp2p.EnableRelay(),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("relay: create host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(nodeCtx, h)
	if err != nil {
		h.Close()
		cancel()
		return nil, fmt.Errorf("relay: create pubsub: %w", err)
	}

	n := &Node{
		host:     h,
		pubsub:   ps,
		peers:    make(map[peer.ID]time.Time),
		maxPeers: cfg.MaxPeers,
		ctx:      nodeCtx,
		cancel:   cancel,
	}

	h.Network().Notify(&network.NotifyBundle{
		ConnectedF:    n.onPeerConnected,
		DisconnectedF: n.onPeerDisconnected,
	})

	if err := n.joinTopics(); err != nil {
		n.Close()
		return nil, fmt.Errorf("relay: join topics: %w", err)
	}

	return n, nil
}

func (n *Node) joinTopics() error {
	var err error

	n.depositTopic, err = n.pubsub.Join(DepositTopic)
	if err != nil {
		return fmt.Errorf("join deposit topic: %w", err)
	}
	n.depositSub, err = n.depositTopic.Subscribe()
	if err != nil {
		return fmt.Errorf("subscribe deposits: %w", err)
	}

	n.spendTopic, err = n.pubsub.Join(SpendTopic)
	if err != nil {
		return fmt.Errorf("join spend topic: %w", err)
	}
	n.spendSub, err = n.spendTopic.Subscribe()
	if err != nil {
		return fmt.Errorf("subscribe spends: %w", err)
	}

	n.rootUpdateTopic, err = n.pubsub.Join(RootUpdateTopic)
	if err != nil {
		return fmt.Errorf("join root-update topic: %w", err)
	}
	n.rootUpdateSub, err = n.rootUpdateTopic.Subscribe()
	if err != nil {
		return fmt.Errorf("subscribe root updates: %w", err)
	}

	return nil
}

// OnDeposit registers the handler invoked for each deposit event.
func (n *Node) OnDeposit(h EventHandler) { n.depositHandler = h }

// OnSpend registers the handler invoked for each spend event.
func (n *Node) OnSpend(h EventHandler) { n.spendHandler = h }

// OnRootUpdate registers the handler invoked for each root-update event.
func (n *Node) OnRootUpdate(h EventHandler) { n.rootUpdateHandler = h }

// Start begins dispatching incoming messages on all three topics.
func (n *Node) Start() {
	go n.processMessages(n.depositSub, func() EventHandler { return n.depositHandler })
	go n.processMessages(n.spendSub, func() EventHandler { return n.spendHandler })
	go n.processMessages(n.rootUpdateSub, func() EventHandler { return n.rootUpdateHandler })
}

func (n *Node) processMessages(sub *pubsub.Subscription, handler func() EventHandler) {
	for {
		msg, err := sub.Next(n.ctx)
		if err != nil {
			if n.ctx.Err() != nil {
				return
			}
			continue
		}

		if msg.ReceivedFrom == n.host.ID() {
			continue
		}

		n.mu.Lock()
		n.peers[msg.ReceivedFrom] = time.Now()
		n.mu.Unlock()

		if h := handler(); h != nil {
			if err := h(n.ctx, msg.ReceivedFrom, msg.Data); err != nil {
				fmt.Printf("relay: handler error: %v\n", err)
			}
		}
	}
}

// PublishDeposit broadcasts a deposit event payload.
func (n *Node) PublishDeposit(ctx context.Context, payload []byte) error {
	return n.depositTopic.Publish(ctx, payload)
}

// PublishSpend broadcasts a spend event payload.
func (n *Node) PublishSpend(ctx context.Context, payload []byte) error {
	return n.spendTopic.Publish(ctx, payload)
}

// PublishRootUpdate broadcasts a root-update event payload.
func (n *Node) PublishRootUpdate(ctx context.Context, payload []byte) error {
	return n.rootUpdateTopic.Publish(ctx, payload)
}

// PeerCount returns the number of peers seen in gossip traffic.
func (n *Node) PeerCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.peers)
}

func (n *Node) onPeerConnected(_ network.Network, c network.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.peers) >= n.maxPeers {
		return
	}
	n.peers[c.RemotePeer()] = time.Now()
}

func (n *Node) onPeerDisconnected(_ network.Network, c network.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.peers, c.RemotePeer())
}

// Close shuts down the relay node.
func (n *Node) Close() error {
	n.cancel()
	return n.host.Close()
}
