package relay

import (
	"encoding/binary"
	"errors"

	"github.com/ccoin/privacypool/internal/field"
)

// Event type tags, mirroring the teacher's p2p message-type byte
// convention (internal/p2p/messages.go's MsgType* constants).
const (
	EventTypeDeposit    uint8 = 0x01
	EventTypeSpend      uint8 = 0x02
	EventTypeRootUpdate uint8 = 0x03
)

var (
	ErrInvalidEventType = errors.New("relay: invalid event type")
	ErrEventTooShort    = errors.New("relay: event payload too short")
)

// DepositEvent announces a new commitment absorbed into the tree at
// LeafIndex, observed at the given block time.
type DepositEvent struct {
	Commitment field.Element
	LeafIndex  uint64
	Timestamp  uint64
}

// SpendEvent announces a nullifier hash published on-chain.
type SpendEvent struct {
	NullifierHash field.Element
	Height        uint64
}

// RootUpdateEvent announces a new accumulator root reaching a given
// append position.
type RootUpdateEvent struct {
	Root     field.Element
	Position uint64
	Height   uint64
}

// EncodeDeposit serializes a DepositEvent to wire bytes: 32-byte
// commitment, 8-byte leaf index, 8-byte timestamp, all big-endian —
// the same fixed-width-field layout the teacher uses for its own
// block/transaction wire encodings.
func EncodeDeposit(e DepositEvent) []byte {
	buf := make([]byte, 0, 48)
	c := e.Commitment.Bytes()
	buf = append(buf, c[:]...)
	buf = binary.BigEndian.AppendUint64(buf, e.LeafIndex)
	buf = binary.BigEndian.AppendUint64(buf, e.Timestamp)
	return buf
}

// DecodeDeposit reverses EncodeDeposit.
func DecodeDeposit(data []byte) (DepositEvent, error) {
	if len(data) < 48 {
		return DepositEvent{}, ErrEventTooShort
	}
	return DepositEvent{
		Commitment: field.FromBytes(data[0:32]),
		LeafIndex:  binary.BigEndian.Uint64(data[32:40]),
		Timestamp:  binary.BigEndian.Uint64(data[40:48]),
	}, nil
}

// EncodeSpend serializes a SpendEvent to wire bytes.
func EncodeSpend(e SpendEvent) []byte {
	buf := make([]byte, 0, 40)
	h := e.NullifierHash.Bytes()
	buf = append(buf, h[:]...)
	buf = binary.BigEndian.AppendUint64(buf, e.Height)
	return buf
}

// DecodeSpend reverses EncodeSpend.
func DecodeSpend(data []byte) (SpendEvent, error) {
	if len(data) < 40 {
		return SpendEvent{}, ErrEventTooShort
	}
	return SpendEvent{
		NullifierHash: field.FromBytes(data[0:32]),
		Height:        binary.BigEndian.Uint64(data[32:40]),
	}, nil
}

// EncodeRootUpdate serializes a RootUpdateEvent to wire bytes.
func EncodeRootUpdate(e RootUpdateEvent) []byte {
	buf := make([]byte, 0, 48)
	r := e.Root.Bytes()
	buf = append(buf, r[:]...)
	buf = binary.BigEndian.AppendUint64(buf, e.Position)
	buf = binary.BigEndian.AppendUint64(buf, e.Height)
	return buf
}

// DecodeRootUpdate reverses EncodeRootUpdate.
func DecodeRootUpdate(data []byte) (RootUpdateEvent, error) {
	if len(data) < 48 {
		return RootUpdateEvent{}, ErrEventTooShort
	}
	return RootUpdateEvent{
		Root:     field.FromBytes(data[0:32]),
		Position: binary.BigEndian.Uint64(data[32:40]),
		Height:   binary.BigEndian.Uint64(data[40:48]),
	}, nil
}
