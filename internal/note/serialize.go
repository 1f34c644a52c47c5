package note

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ccoin/privacypool/internal/field"
)

// Serialized is the wire/backup form of a Note: decimal strings for
// every Fq attribute, plain integers for leaf index and timestamp
// (spec.md §3's "serialized note" shape). json struct tags make it the
// shape embedded in the persisted wallet blob (spec.md §6).
type Serialized struct {
	Secret     string  `json:"secret"`
	Nullifier  string  `json:"nullifier"`
	Amount     string  `json:"amount"`
	Commitment string  `json:"commitment"`
	LeafIndex  *uint64 `json:"leaf_index,omitempty"`
	Timestamp  uint64  `json:"timestamp"`
}

// Serialize converts a Note into its wire form.
func (n *Note) Serialize() Serialized {
	return Serialized{
		Secret:     n.Secret.Decimal(),
		Nullifier:  n.Nullifier.Decimal(),
		Amount:     n.Amount.Decimal(),
		Commitment: n.Commitment.Decimal(),
		LeafIndex:  n.LeafIndex,
		Timestamp:  n.Timestamp,
	}
}

// Deserialize parses a wire-form note back into a Note, recomputing
// (not trusting) the commitment from secret/nullifier/amount so that a
// tampered or stale Commitment field can never survive a round trip.
//
// serialize(deserialize(x)) == x is a two-sided inverse per spec.md §8
// property 5, as long as x.Commitment already agrees with the
// recomputed value — callers that need to detect a mismatch should
// compare s.Commitment against the returned Note's Commitment.
func Deserialize(s Serialized) (*Note, error) {
	secret, err := field.FromDecimal(s.Secret)
	if err != nil {
		return nil, fmt.Errorf("note: invalid secret: %w", err)
	}
	nullifier, err := field.FromDecimal(s.Nullifier)
	if err != nil {
		return nil, fmt.Errorf("note: invalid nullifier: %w", err)
	}
	amount, err := field.FromDecimal(s.Amount)
	if err != nil {
		return nil, fmt.Errorf("note: invalid amount: %w", err)
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	return &Note{
		Secret:     secret,
		Nullifier:  nullifier,
		Amount:     amount,
		Commitment: Commit(secret, nullifier, amount),
		LeafIndex:  s.LeafIndex,
		Timestamp:  s.Timestamp,
	}, nil
}

// EncodeEnvelope wraps a serialized note in a base64 JSON envelope for
// backup/export. Not required for correctness of the core (spec.md
// §4.B) — a convenience for user-facing "save my note" flows.
func EncodeEnvelope(s Serialized) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeEnvelope reverses EncodeEnvelope.
func DecodeEnvelope(envelope string) (Serialized, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return Serialized{}, err
	}
	var s Serialized
	if err := json.Unmarshal(raw, &s); err != nil {
		return Serialized{}, err
	}
	return s, nil
}
