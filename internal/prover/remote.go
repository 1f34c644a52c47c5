package prover

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ccoin/privacypool/internal/field"
	"github.com/ccoin/privacypool/internal/merkletree"
	"github.com/ccoin/privacypool/internal/poolerr"
)

// No HTTP client library appears anywhere in the example pack; the
// remote backend is the one component spec.md §4.H requires that has
// no teacher precedent at all, so it is built directly on net/http,
// the standard idiom for a JSON-over-HTTP client with no special
// transport needs (see DESIGN.md's standard-library justifications).

// noteWire is the wire shape of a single note's private fields: field
// elements as decimal strings, per spec.md §6.
type noteWire struct {
	Secret    string `json:"secret"`
	Nullifier string `json:"nullifier"`
	Amount    string `json:"amount"`
}

// merklePathWire is the wire shape of one input note's co-path: decimal
// strings for siblings, plain 0/1 integers for indices, per spec.md §6.
type merklePathWire struct {
	Siblings []string `json:"merkle_path"`
	Indices  []int    `json:"merkle_indices"`
}

// remoteWitness is the wire shape spec.md §6 specifies, generalized from
// its single-note example to arrays of Notes/MerklePaths so a
// consolidation witness (k>=2 inputs) serializes every input rather
// than silently dropping all but the first — both backends must agree
// on the same witness schema per spec.md §4.H. withdraw/transfer still
// populate exactly one element of each array.
type remoteWitness struct {
	Operation   Operation        `json:"operation"`
	Notes       []noteWire       `json:"notes"`
	MerklePaths []merklePathWire `json:"merkle_paths"`
	MerkleRoot  string           `json:"merkle_root"`
	Recipient   string           `json:"recipient,omitempty"`

	OutputAmount     string `json:"output_amount,omitempty"`
	OutputCommitment string `json:"output_commitment,omitempty"`
	OutputSecret     string `json:"output_secret,omitempty"`
	OutputNullifier  string `json:"output_nullifier,omitempty"`
	ChangeSecret     string `json:"change_secret,omitempty"`
	ChangeNullifier  string `json:"change_nullifier,omitempty"`
	ChangeAmount     string `json:"change_amount,omitempty"`
}

type remoteProofResponse struct {
	ProofBytesBase64 string   `json:"proof_bytes_base64"`
	PublicInputs     []string `json:"public_inputs"`
	TimingMillis     int64    `json:"timing_millis"`
	Error            string   `json:"error,omitempty"`
}

// RemoteBackend serializes a witness as JSON, posts it to Endpoint, and
// parses back a proof. It retries once on a transient I/O error (a
// failed round trip, not an application-level error response), per
// spec.md §7's "the orchestrator may retry a remote backend once on
// transient I/O error" — here implemented inside the backend itself
// since the orchestrator delegates retry policy to whichever backend
// it is calling.
type RemoteBackend struct {
	Endpoint string
	Client   *http.Client
}

// NewRemoteBackend creates a RemoteBackend posting to endpoint with a
// bounded per-request timeout.
func NewRemoteBackend(endpoint string) *RemoteBackend {
	return &RemoteBackend{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Prove satisfies Backend by serializing w, posting it to the
// configured endpoint, and decoding the proof response. A single
// retry is attempted if the initial round trip fails at the transport
// level (connection refused, timeout, etc.); an application-level
// error in the response body is never retried.
func (b *RemoteBackend) Prove(ctx context.Context, w Witness) (*ProofResult, error) {
	body, err := json.Marshal(toRemoteWitness(w))
	if err != nil {
		return nil, fmt.Errorf("prover: encode witness: %w", err)
	}

	start := time.Now()
	resp, err := b.post(ctx, body)
	if err != nil {
		resp, err = b.post(ctx, body) // one retry on transient I/O error
		if err != nil {
			return nil, fmt.Errorf("%w: %v", poolerr.ErrProverUnavailable, err)
		}
	}
	defer resp.Body.Close()

	var decoded remoteProofResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("prover: decode response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("%w: %s", poolerr.ErrProverUnavailable, decoded.Error)
	}

	proofBytes, err := base64.StdEncoding.DecodeString(decoded.ProofBytesBase64)
	if err != nil {
		return nil, fmt.Errorf("prover: decode proof bytes: %w", err)
	}
	if len(proofBytes) != ProofSize {
		return nil, poolerr.ErrProofSizeMismatch
	}

	publicInputs := make([]field.Element, len(decoded.PublicInputs))
	for i, s := range decoded.PublicInputs {
		e, err := field.FromDecimal(s)
		if err != nil {
			return nil, fmt.Errorf("prover: decode public input %d: %w", i, err)
		}
		publicInputs[i] = e
	}

	return &ProofResult{
		RawProofBytes: proofBytes,
		PublicInputs:  publicInputs,
		Timing:        time.Since(start),
	}, nil
}

func (b *RemoteBackend) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return b.Client.Do(req)
}

func toRemoteWitness(w Witness) remoteWitness {
	rw := remoteWitness{
		Operation:   w.Operation,
		MerkleRoot:  w.MerkleRoot.Decimal(),
		Notes:       make([]noteWire, len(w.Inputs)),
		MerklePaths: make([]merklePathWire, len(w.MerkleProof)),
	}

	for i, n := range w.Inputs {
		rw.Notes[i] = noteWire{
			Secret:    n.Secret.Decimal(),
			Nullifier: n.Nullifier.Decimal(),
			Amount:    n.Amount.Decimal(),
		}
	}
	for i, p := range w.MerkleProof {
		mp := merklePathWire{
			Siblings: make([]string, merkletree.Depth),
			Indices:  make([]int, merkletree.Depth),
		}
		for level, s := range p.Siblings {
			mp.Siblings[level] = s.Decimal()
			if p.Indices[level] {
				mp.Indices[level] = 1
			}
		}
		rw.MerklePaths[i] = mp
	}

	switch w.Operation {
	case OpWithdraw:
		rw.Recipient = w.Recipient.Decimal()
		rw.OutputAmount = w.OutputAmount.Decimal()
	case OpTransfer:
		rw.OutputAmount = w.OutputAmount.Decimal()
		rw.OutputCommitment = w.OutputCommitment.Decimal()
		if w.Change != nil {
			rw.ChangeSecret = w.Change.Secret.Decimal()
			rw.ChangeNullifier = w.Change.Nullifier.Decimal()
			rw.ChangeAmount = w.Change.Amount.Decimal()
		}
	case OpConsolidation:
		rw.OutputCommitment = w.OutputCommitment.Decimal()
		if w.Output != nil {
			rw.OutputSecret = w.Output.Secret.Decimal()
			rw.OutputNullifier = w.Output.Nullifier.Decimal()
			rw.OutputAmount = w.Output.Amount.Decimal()
		}
	}

	return rw
}
