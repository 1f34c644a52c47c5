package wallet

import (
	"context"

	"github.com/ccoin/privacypool/internal/storage"
)

// PostgresStoreAdapter satisfies PersistenceStore on top of
// storage.PostgresStore's wallet-blob table, stamping updated_at with
// the caller-supplied height/time rather than a wall-clock read (this
// package never calls time.Now so that blob writes stay reproducible
// in tests).
type PostgresStoreAdapter struct {
	store *storage.PostgresStore
	clock func() uint64
}

// NewPostgresStoreAdapter wraps store, using clock to stamp each saved
// blob's updated_at field.
func NewPostgresStoreAdapter(store *storage.PostgresStore, clock func() uint64) *PostgresStoreAdapter {
	return &PostgresStoreAdapter{store: store, clock: clock}
}

func (a *PostgresStoreAdapter) SaveBlob(ctx context.Context, walletID string, blob []byte) error {
	return a.store.SaveWalletBlob(ctx, walletID, blob, a.clock())
}

func (a *PostgresStoreAdapter) LoadBlob(ctx context.Context, walletID string) ([]byte, error) {
	return a.store.LoadWalletBlob(ctx, walletID)
}
