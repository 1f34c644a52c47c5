// Package poolerr collects the sentinel errors shared across the pool
// engine's packages (spec.md §7's error taxonomy), so callers at any
// layer can errors.Is against a single stable vocabulary regardless of
// which package actually detected the condition.
//
// Grounded on the teacher's (m1zr-ccoin) convention of per-package
// sentinel `var Err... = errors.New(...)` declarations (see
// internal/zkp/nullifier.go, internal/storage/postgres.go); centralized
// here because these specific errors cross package boundaries by
// design — e.g. a merkletree.ErrNotFound and a scanner "note not yet
// seen" condition are the same caller-visible event.
package poolerr

import "errors"

var (
	// ErrInvalidField is returned when a value claimed to be a field
	// element is out of range or malformed.
	ErrInvalidField = errors.New("poolerr: invalid field element")

	// ErrAmountOutOfRange is returned when a note amount falls outside
	// [0, 2^128).
	ErrAmountOutOfRange = errors.New("poolerr: amount out of range")

	// ErrTreeFull is returned when an append is attempted against a
	// commitment tree already at its fixed capacity.
	ErrTreeFull = errors.New("poolerr: commitment tree is full")

	// ErrNotInTree is returned when a commitment has no known leaf
	// position in the accumulator.
	ErrNotInTree = errors.New("poolerr: commitment not found in tree")

	// ErrRootExpired is returned when a submitted Merkle root has aged
	// out of the accumulator's root history window.
	ErrRootExpired = errors.New("poolerr: merkle root has expired")

	// ErrInsufficientBalance is returned when a spend plan cannot be
	// satisfied by the wallet's available notes.
	ErrInsufficientBalance = errors.New("poolerr: insufficient available balance")

	// ErrDuplicateCommitment is returned when a commitment already
	// present in the tree is submitted again.
	ErrDuplicateCommitment = errors.New("poolerr: duplicate commitment")

	// ErrProverUnavailable is returned when no configured proof backend
	// could service a proving request.
	ErrProverUnavailable = errors.New("poolerr: no proof backend available")

	// ErrProofSizeMismatch is returned when a backend returns a proof
	// whose size does not match the fixed size invariant all backends
	// must honor.
	ErrProofSizeMismatch = errors.New("poolerr: proof size does not match expected invariant")

	// ErrPersistenceFailure is returned when a wallet or tree store
	// operation fails in a way the caller cannot recover from locally.
	ErrPersistenceFailure = errors.New("poolerr: persistence operation failed")

	// ErrNullifierSpent is returned when a nullifier has already been
	// published on-chain.
	ErrNullifierSpent = errors.New("poolerr: nullifier already spent")
)
