package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ligo/internal/domain"
)

// HTTPClient talks to a node gateway exposing the execute-function API over
// JSON/HTTP. The caller identity is fixed at construction; the gateway holds
// the session that signs on its behalf.
type HTTPClient struct {
	baseURL     string
	fromAddress string
	apiKey      string
	client      *http.Client

	// PollInterval controls how often a pending transaction's receipt is
	// polled during Confirm.
	PollInterval time.Duration
}

// NewHTTPClient creates a client for the gateway at baseURL acting as
// fromAddress.
func NewHTTPClient(baseURL, fromAddress, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:      baseURL,
		fromAddress:  fromAddress,
		apiKey:       apiKey,
		client:       &http.Client{Timeout: 30 * time.Second},
		PollInterval: 2 * time.Second,
	}
}

type executeRequest struct {
	CallRequest
	From  string `json:"from"`
	Value string `json:"value,omitempty"`
}

type executeResponse struct {
	TxHash string `json:"txHash"`
}

type receiptResponse struct {
	Status          string `json:"status"` // "pending", "confirmed", "reverted"
	Reason          string `json:"reason,omitempty"`
	BlockNumber     uint64 `json:"blockNumber"`
	ContractAddress string `json:"contractAddress,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ExecuteRead performs a read-only contract call.
func (c *HTTPClient) ExecuteRead(ctx context.Context, req CallRequest, out any) error {
	var result struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.post(ctx, "/api/v0/contract/read", executeRequest{CallRequest: req, From: c.fromAddress}, &result); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", req.Function, err)
	}
	return nil
}

// ExecuteTransaction submits a state-changing contract call.
func (c *HTTPClient) ExecuteTransaction(ctx context.Context, req CallRequest, value domain.Amount) (PendingTx, error) {
	body := executeRequest{CallRequest: req, From: c.fromAddress}
	if !value.IsZero() {
		body.Value = value.String()
	}

	var resp executeResponse
	if err := c.post(ctx, "/api/v0/contract/execute", body, &resp); err != nil {
		// Submission and confirmation failures are not distinguishable
		// beyond the gateway's reason string.
		return nil, &TxError{Reason: err.Error()}
	}

	return &httpPendingTx{client: c, txHash: resp.TxHash}, nil
}

// httpPendingTx polls the gateway for the transaction receipt.
type httpPendingTx struct {
	client *HTTPClient
	txHash string
}

func (tx *httpPendingTx) Confirm(ctx context.Context) (*Receipt, error) {
	ticker := time.NewTicker(tx.client.PollInterval)
	defer ticker.Stop()

	for {
		var receipt receiptResponse
		url := fmt.Sprintf("/api/v0/tx/%s/receipt", tx.txHash)
		if err := tx.client.get(ctx, url, &receipt); err != nil {
			return nil, &TxError{Reason: err.Error()}
		}

		switch receipt.Status {
		case "confirmed":
			return &Receipt{
				TxHash:          tx.txHash,
				BlockNumber:     receipt.BlockNumber,
				ContractAddress: receipt.ContractAddress,
			}, nil
		case "reverted":
			return nil, &TxError{Reason: receipt.Reason}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	return c.do(req, out)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr errorResponse
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &gwErr) == nil && gwErr.Error != "" {
			return fmt.Errorf("gateway status %d: %s", resp.StatusCode, gwErr.Error)
		}
		return fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
