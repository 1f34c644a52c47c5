package relay

import (
	"testing"

	"github.com/ccoin/privacypool/internal/field"
)

func TestDepositEventRoundTrip(t *testing.T) {
	e := DepositEvent{
		Commitment: field.FromUint64(123),
		LeafIndex:  7,
		Timestamp:  1690000000,
	}
	back, err := DecodeDeposit(EncodeDeposit(e))
	if err != nil {
		t.Fatalf("DecodeDeposit: %v", err)
	}
	if !back.Commitment.Equal(e.Commitment) || back.LeafIndex != e.LeafIndex || back.Timestamp != e.Timestamp {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back, e)
	}
}

func TestSpendEventRoundTrip(t *testing.T) {
	e := SpendEvent{NullifierHash: field.FromUint64(456), Height: 99}
	back, err := DecodeSpend(EncodeSpend(e))
	if err != nil {
		t.Fatalf("DecodeSpend: %v", err)
	}
	if !back.NullifierHash.Equal(e.NullifierHash) || back.Height != e.Height {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back, e)
	}
}

func TestRootUpdateEventRoundTrip(t *testing.T) {
	e := RootUpdateEvent{Root: field.FromUint64(789), Position: 42, Height: 100}
	back, err := DecodeRootUpdate(EncodeRootUpdate(e))
	if err != nil {
		t.Fatalf("DecodeRootUpdate: %v", err)
	}
	if !back.Root.Equal(e.Root) || back.Position != e.Position || back.Height != e.Height {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back, e)
	}
}

func TestDecodeRejectsShortPayload(t *testing.T) {
	if _, err := DecodeDeposit([]byte{1, 2, 3}); err != ErrEventTooShort {
		t.Fatalf("expected ErrEventTooShort, got %v", err)
	}
	if _, err := DecodeSpend([]byte{1, 2, 3}); err != ErrEventTooShort {
		t.Fatalf("expected ErrEventTooShort, got %v", err)
	}
	if _, err := DecodeRootUpdate([]byte{1, 2, 3}); err != ErrEventTooShort {
		t.Fatalf("expected ErrEventTooShort, got %v", err)
	}
}
