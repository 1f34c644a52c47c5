package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ccoin/privacypool/internal/field"
)

// RPCContractView implements ContractView against a JSON-RPC-ish HTTP
// endpoint, the same transport shape internal/prover's RemoteBackend
// uses — grounded on it rather than on any teacher chain client, since
// the teacher talks to its own in-process DAG/consensus packages, not
// an HTTP contract view.
type RPCContractView struct {
	Endpoint string
	Client   *http.Client
}

// NewRPCContractView creates a view against endpoint with a 15 second
// per-request timeout.
func NewRPCContractView(endpoint string) *RPCContractView {
	return &RPCContractView{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type rpcDepositEvent struct {
	Commitment string `json:"commitment"`
	Amount     string `json:"amount"`
	LeafIndex  uint64 `json:"leaf_index"`
	Height     uint64 `json:"height"`
	Timestamp  uint64 `json:"timestamp"`
}

type rpcEventsResponse struct {
	Events []rpcDepositEvent `json:"events"`
}

// EventsSince fetches deposit events strictly after fromBlock from
// GET <endpoint>/events?since=<fromBlock>.
func (v *RPCContractView) EventsSince(ctx context.Context, fromBlock uint64) ([]DepositEvent, error) {
	url := fmt.Sprintf("%s/events?since=%d", v.Endpoint, fromBlock)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("scanner: build events request: %w", err)
	}

	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scanner: fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scanner: events endpoint returned status %d", resp.StatusCode)
	}

	var parsed rpcEventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("scanner: decode events response: %w", err)
	}

	out := make([]DepositEvent, 0, len(parsed.Events))
	for _, e := range parsed.Events {
		commitment, err := field.FromDecimal(e.Commitment)
		if err != nil {
			return nil, fmt.Errorf("scanner: decode commitment: %w", err)
		}
		amount, err := field.FromDecimal(e.Amount)
		if err != nil {
			return nil, fmt.Errorf("scanner: decode amount: %w", err)
		}
		out = append(out, DepositEvent{
			Commitment: commitment,
			Amount:     amount,
			LeafIndex:  e.LeafIndex,
			BlockInfo:  BlockInfo{Height: e.Height, Timestamp: e.Timestamp},
		})
	}
	return out, nil
}

type rpcSpentRequest struct {
	Hashes []string `json:"hashes"`
}

type rpcSpentResponse struct {
	Spent map[string]bool `json:"spent"`
}

// BatchNullifierSpent posts the hash set to POST <endpoint>/nullifiers/spent
// and returns the contract's spent/unspent verdicts.
func (v *RPCContractView) BatchNullifierSpent(ctx context.Context, hashes []field.Element) (map[string]bool, error) {
	hexes := make([]string, len(hashes))
	for i, h := range hashes {
		hexes[i] = h.Decimal()
	}

	body, err := json.Marshal(rpcSpentRequest{Hashes: hexes})
	if err != nil {
		return nil, fmt.Errorf("scanner: encode spent request: %w", err)
	}

	url := v.Endpoint + "/nullifiers/spent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("scanner: build spent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scanner: post spent check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scanner: spent endpoint returned status %d", resp.StatusCode)
	}

	var parsed rpcSpentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("scanner: decode spent response: %w", err)
	}
	return parsed.Spent, nil
}
