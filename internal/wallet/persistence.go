package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/note"
)

// PersistenceStore persists and retrieves a wallet's opaque blob. The
// pool engine ships two implementations: an atomic-replace file store
// for single-user CLI wallets, and a Postgres-backed store (internal/
// storage) for hosted deployments.
type PersistenceStore interface {
	SaveBlob(ctx context.Context, walletID string, blob []byte) error
	LoadBlob(ctx context.Context, walletID string) ([]byte, error)
}

// persistedNote is one element of the blob's notes[] array (spec.md
// §6's persisted wallet blob shape).
type persistedNote struct {
	note.Serialized
	Index  uint64 `json:"index"`
	Status Status `json:"status"`
	TxRef  string `json:"tx_ref,omitempty"`
}

// persistedBlob is the full wallet blob: master_seed, note_index,
// notes[], last_scanned_block, exactly as spec.md §6 describes it.
// Forward-compatible readers ignore unknown JSON fields by construction
// (encoding/json already does this for unmapped struct fields).
type persistedBlob struct {
	MasterSeed       string          `json:"master_seed"`
	NoteIndex        uint64          `json:"note_index"`
	Notes            []persistedNote `json:"notes"`
	LastScannedBlock uint64          `json:"last_scanned_block"`
}

// serializeLocked builds the persisted blob from wallet state. Callers
// must hold w.mu.
func (w *Wallet) serializeLocked() ([]byte, error) {
	blob := persistedBlob{
		MasterSeed:       w.seed.Decimal(),
		NoteIndex:        w.noteIndex,
		LastScannedBlock: w.lastScannedBlock,
	}
	for _, rec := range w.records {
		blob.Notes = append(blob.Notes, persistedNote{
			Serialized: rec.Note.Serialize(),
			Index:      rec.Index,
			Status:     rec.Status,
			TxRef:      rec.TxRef,
		})
	}
	return json.Marshal(blob)
}

// Load rehydrates a Wallet from a previously persisted blob, loaded via
// store.LoadBlob(walletID). Scan results obtained after the blob was
// written are the caller's responsibility to merge in afterward (the
// scanner's Sync method does this).
func Load(ctx context.Context, id string, store PersistenceStore) (*Wallet, error) {
	raw, err := store.LoadBlob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("wallet: load blob: %w", err)
	}

	var blob persistedBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, fmt.Errorf("wallet: decode blob: %w", err)
	}

	seed, err := field.FromDecimal(blob.MasterSeed)
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid master seed: %w", err)
	}

	w := &Wallet{
		seed:             seed,
		noteIndex:        blob.NoteIndex,
		records:          make(map[string]*Record),
		lastScannedBlock: blob.LastScannedBlock,
		store:            store,
		id:               id,
	}

	for _, pn := range blob.Notes {
		n, err := note.Deserialize(pn.Serialized)
		if err != nil {
			return nil, fmt.Errorf("wallet: invalid persisted note: %w", err)
		}
		w.records[n.Commitment.Decimal()] = &Record{
			Note:   n,
			Index:  pn.Index,
			Status: pn.Status,
			TxRef:  pn.TxRef,
		}
	}

	return w, nil
}
