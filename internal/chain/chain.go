// Package chain abstracts the "execute contract function" RPC surface of the
// wallet provider's node gateway. The ledger registry backend is written
// against the Client interface so it can be exercised with the in-process
// devnet as well as a real gateway.
package chain

import (
	"context"
	"encoding/json"

	"ligo/internal/domain"
)

// CallRequest describes a single contract function invocation.
type CallRequest struct {
	ContractAddress string          `json:"contractAddress"`
	Function        string          `json:"functionName"`
	ABI             json.RawMessage `json:"abi,omitempty"`
	Params          map[string]any  `json:"params,omitempty"`
}

// Receipt is the finalized outcome of a confirmed state-changing call.
type Receipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	// ContractAddress is set when the call deployed a new agreement contract.
	ContractAddress string `json:"contractAddress,omitempty"`
}

// PendingTx is a submitted state-changing call whose outcome is only known
// once confirmed. Confirmation cannot be cancelled, only awaited.
type PendingTx interface {
	Confirm(ctx context.Context) (*Receipt, error)
}

// Client executes contract functions on the remote registry on behalf of a
// single caller identity.
type Client interface {
	// ExecuteRead performs a read-only call and decodes the returned tuple
	// into out.
	ExecuteRead(ctx context.Context, req CallRequest, out any) error

	// ExecuteTransaction submits a state-changing call, attaching value as
	// the payment accompanying the call, and returns a handle to await
	// confirmation.
	ExecuteTransaction(ctx context.Context, req CallRequest, value domain.Amount) (PendingTx, error)
}
