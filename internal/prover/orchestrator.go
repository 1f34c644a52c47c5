package prover

import (
	"context"
	"errors"
	"fmt"

	"github.com/ccoin/privacypool/internal/poolerr"
)

// Preference names the backend a caller wants; the orchestrator never
// substitutes a different one silently (spec.md §7).
type Preference string

const (
	PreferInProcess Preference = "in-process"
	PreferRemote    Preference = "remote"
)

// Orchestrator dispatches a witness to the caller-preferred backend and
// enforces the proof-size invariant both backends must honor.
type Orchestrator struct {
	inProcess *InProcessBackend
	remote    *RemoteBackend
}

// NewOrchestrator creates an Orchestrator over the two configured
// backends. Either may be nil if that backend is not available in this
// deployment; selecting an unconfigured backend fails with
// ErrProverUnavailable.
func NewOrchestrator(inProcess *InProcessBackend, remote *RemoteBackend) *Orchestrator {
	return &Orchestrator{inProcess: inProcess, remote: remote}
}

// Prove dispatches w to the backend named by pref. It never falls back
// to the other backend on failure — the caller must explicitly retry
// with a different preference if it wants that.
func (o *Orchestrator) Prove(ctx context.Context, pref Preference, w Witness) (*ProofResult, error) {
	var backend Backend
	switch pref {
	case PreferInProcess:
		backend = o.inProcess
	case PreferRemote:
		backend = o.remote
	default:
		return nil, fmt.Errorf("prover: unknown backend preference %q", pref)
	}

	if backend == nil || isNilBackend(backend) {
		return nil, poolerr.ErrProverUnavailable
	}

	result, err := backend.Prove(ctx, w)
	if err != nil {
		return nil, err
	}
	if len(result.RawProofBytes) != ProofSize {
		return nil, poolerr.ErrProofSizeMismatch
	}
	return result, nil
}

// isNilBackend guards against a typed-nil interface value (e.g. a nil
// *InProcessBackend boxed into the Backend interface), which a plain
// `backend == nil` comparison would miss.
func isNilBackend(b Backend) bool {
	switch v := b.(type) {
	case *InProcessBackend:
		return v == nil
	case *RemoteBackend:
		return v == nil
	default:
		return false
	}
}

// ErrUnsupportedOperation is returned when a witness names an operation
// no compiled circuit handles.
var ErrUnsupportedOperation = errors.New("prover: unsupported operation")
