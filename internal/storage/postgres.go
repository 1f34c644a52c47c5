// Package storage implements the pool engine's PostgreSQL-backed
// persistence: commitment tree nodes, root history, spent nullifiers,
// and wallet state blobs, for deployments that run the pool as a
// long-lived service rather than a single-user CLI wallet.
//
// Adapted from the teacher's (m1zr-ccoin) internal/storage/postgres.go:
// the same pgxpool.Pool/Config/DefaultConfig shape and %w-wrapped error
// style, repointed from chain/block/transaction tables onto the
// tree-node, root-history, nullifier, and wallet-blob tables this
// domain needs.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ccoin/privacypool/internal/field"
)

// Common errors, mirroring the teacher's sentinel style.
var (
	ErrNotFound     = errors.New("storage: not found")
	ErrDuplicate    = errors.New("storage: duplicate entry")
	ErrInvalidData  = errors.New("storage: invalid data")
	ErrDBConnection = errors.New("storage: database connection error")
)

// PostgresStore implements persistent storage for the pool engine using
// PostgreSQL. It satisfies merkletree.Store; wallet.PostgresStoreAdapter
// wraps its wallet-blob methods as a wallet.PersistenceStore.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Config holds database configuration, identical in shape to the
// teacher's storage.Config.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DefaultConfig returns default database configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		User:     "pool",
		Password: "",
		Database: "privacypool",
		SSLMode:  "disable",
		MaxConns: 20,
	}
}

// NewPostgresStore opens a connection pool and verifies connectivity.
func NewPostgresStore(ctx context.Context, cfg *Config) (*PostgresStore, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode, cfg.MaxConns,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBConnection, err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBConnection, err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Schema returns the DDL this store expects to already exist. Exposed
// as a constant rather than auto-applied: the teacher never runs
// migrations from inside the store either, leaving schema management to
// deployment tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS tree_nodes (
	level INTEGER NOT NULL,
	index BIGINT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (level, index)
);

CREATE TABLE IF NOT EXISTS tree_roots (
	position BIGINT PRIMARY KEY,
	root TEXT NOT NULL,
	recorded_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS spent_nullifiers (
	nullifier_hash TEXT PRIMARY KEY,
	spent_at_height BIGINT NOT NULL,
	tx_ref TEXT
);

CREATE TABLE IF NOT EXISTS wallet_blobs (
	wallet_id TEXT PRIMARY KEY,
	blob BYTEA NOT NULL,
	updated_at BIGINT NOT NULL
);
`

// ============================================
// Tree node operations (merkletree.Store)
// ============================================

// GetNode retrieves a single tree node, satisfying merkletree.Store.
func (s *PostgresStore) GetNode(ctx context.Context, level int, index uint64) (field.Element, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM tree_nodes WHERE level = $1 AND index = $2`,
		level, index,
	).Scan(&value)

	if err == pgx.ErrNoRows {
		return field.Element{}, false, nil
	}
	if err != nil {
		return field.Element{}, false, fmt.Errorf("storage: get node: %w", err)
	}

	e, err := field.FromDecimal(value)
	if err != nil {
		return field.Element{}, false, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return e, true, nil
}

// SetNode writes a single tree node, satisfying merkletree.Store.
func (s *PostgresStore) SetNode(ctx context.Context, level int, index uint64, value field.Element) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tree_nodes (level, index, value) VALUES ($1, $2, $3)
		 ON CONFLICT (level, index) DO UPDATE SET value = $3`,
		level, index, value.Decimal(),
	)
	if err != nil {
		return fmt.Errorf("storage: set node: %w", err)
	}
	return nil
}

// ============================================
// Root history operations
// ============================================

// RecordRoot persists a newly produced accumulator root at the given
// append position, satisfying merkletree.Store. recorded_at is the
// database's own clock, not a block height/time the tree itself has no
// notion of — Tree.Append calls this on every append so a server-side
// accumulator survives a process restart (spec.md §5), which the
// absence of any call site for this method previously left unmet.
func (s *PostgresStore) RecordRoot(ctx context.Context, position uint64, root field.Element) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tree_roots (position, root, recorded_at) VALUES ($1, $2, extract(epoch from now())::bigint)
		 ON CONFLICT (position) DO UPDATE SET root = $2, recorded_at = extract(epoch from now())::bigint`,
		position, root.Decimal(),
	)
	if err != nil {
		return fmt.Errorf("storage: record root: %w", err)
	}
	return nil
}

// LatestPosition returns the highest recorded append position and its
// root, for reconstructing an in-process Tree's leaf count on startup.
// A fresh database with no recorded roots returns (0, field.Zero, false).
func (s *PostgresStore) LatestPosition(ctx context.Context) (uint64, field.Element, bool, error) {
	var position uint64
	var root string
	err := s.pool.QueryRow(ctx,
		`SELECT position, root FROM tree_roots ORDER BY position DESC LIMIT 1`,
	).Scan(&position, &root)
	if err == pgx.ErrNoRows {
		return 0, field.Element{}, false, nil
	}
	if err != nil {
		return 0, field.Element{}, false, fmt.Errorf("storage: latest position: %w", err)
	}
	e, err := field.FromDecimal(root)
	if err != nil {
		return 0, field.Element{}, false, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return position, e, true, nil
}

// RecentRoots returns the `limit` most recently recorded roots, oldest
// first, for seeding an in-process root-history ring on startup.
func (s *PostgresStore) RecentRoots(ctx context.Context, limit int) ([]field.Element, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT root FROM tree_roots ORDER BY position DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: recent roots: %w", err)
	}
	defer rows.Close()

	var decimals []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("storage: recent roots scan: %w", err)
		}
		decimals = append(decimals, root)
	}

	out := make([]field.Element, len(decimals))
	for i := len(decimals) - 1; i >= 0; i-- {
		e, err := field.FromDecimal(decimals[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		out[len(decimals)-1-i] = e
	}
	return out, nil
}

// ============================================
// Nullifier operations
// ============================================

// IsNullifierSpent checks whether a nullifier hash has been recorded as
// spent.
func (s *PostgresStore) IsNullifierSpent(ctx context.Context, nullifierHash field.Element) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM spent_nullifiers WHERE nullifier_hash = $1)`,
		nullifierHash.Decimal(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("storage: is nullifier spent: %w", err)
	}
	return exists, nil
}

// MarkNullifierSpent records a nullifier hash as spent at the given
// height, rejecting a duplicate mark per spec.md's double-spend
// invariant.
func (s *PostgresStore) MarkNullifierSpent(ctx context.Context, nullifierHash field.Element, spentAtHeight uint64, txRef string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO spent_nullifiers (nullifier_hash, spent_at_height, tx_ref) VALUES ($1, $2, $3)`,
		nullifierHash.Decimal(), spentAtHeight, txRef,
	)
	if err != nil {
		var pgErr interface{ SQLState() string }
		if errors.As(err, &pgErr) && pgErr.SQLState() == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("storage: mark nullifier spent: %w", err)
	}
	return nil
}

// BatchCheckNullifiers checks many nullifier hashes in one round trip,
// for the scanner's candidate-note recovery sweep.
func (s *PostgresStore) BatchCheckNullifiers(ctx context.Context, hashes []field.Element) (map[string]bool, error) {
	decimals := make([]string, len(hashes))
	for i, h := range hashes {
		decimals[i] = h.Decimal()
	}

	rows, err := s.pool.Query(ctx,
		`SELECT nullifier_hash FROM spent_nullifiers WHERE nullifier_hash = ANY($1)`,
		decimals,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: batch check nullifiers: %w", err)
	}
	defer rows.Close()

	spent := make(map[string]bool, len(decimals))
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("storage: batch check scan: %w", err)
		}
		spent[h] = true
	}
	return spent, nil
}

// ============================================
// Wallet blob operations (wallet.PersistenceStore)
// ============================================

// SaveWalletBlob stores an opaque serialized wallet state under walletID.
func (s *PostgresStore) SaveWalletBlob(ctx context.Context, walletID string, blob []byte, updatedAt uint64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO wallet_blobs (wallet_id, blob, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (wallet_id) DO UPDATE SET blob = $2, updated_at = $3`,
		walletID, blob, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: save wallet blob: %w", err)
	}
	return nil
}

// LoadWalletBlob retrieves the opaque serialized wallet state for
// walletID, returning ErrNotFound if none has been saved yet.
func (s *PostgresStore) LoadWalletBlob(ctx context.Context, walletID string) ([]byte, error) {
	var blob []byte
	err := s.pool.QueryRow(ctx,
		`SELECT blob FROM wallet_blobs WHERE wallet_id = $1`, walletID,
	).Scan(&blob)

	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load wallet blob: %w", err)
	}
	return blob, nil
}
