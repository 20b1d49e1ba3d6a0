package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
)

// DefaultGatewayDomain is the public subdomain gateway used for reads.
const DefaultGatewayDomain = "ipfs.dweb.link"

// IPFSStore is a Store backed by an IPFS node for writes and a public
// subdomain gateway for reads (https://<cid>.<gateway>/).
type IPFSStore struct {
	shell   *shell.Shell
	gateway string
	client  *http.Client
}

// NewIPFSStore creates a store talking to the IPFS API at apiAddr and
// reading through gatewayDomain. An empty gatewayDomain selects the default
// public gateway.
func NewIPFSStore(apiAddr, gatewayDomain string) *IPFSStore {
	if gatewayDomain == "" {
		gatewayDomain = DefaultGatewayDomain
	}
	return &IPFSStore{
		shell:   shell.NewShell(apiAddr),
		gateway: gatewayDomain,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Put uploads record as one immutable JSON file and returns its CID.
func (s *IPFSStore) Put(ctx context.Context, record any) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	cid, err := s.shell.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		return "", fmt.Errorf("%w: add: %v", ErrUnavailable, err)
	}

	return cid, nil
}

// Get fetches the blob for cid through the public gateway and decodes it
// into out.
func (s *IPFSStore) Get(ctx context.Context, cid string, out any) error {
	url := fmt.Sprintf("https://%s.%s/", cid, s.gateway)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create gateway request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: gateway fetch %s: %v", ErrUnavailable, cid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: cid %s (gateway status %d)", ErrNotFound, cid, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode blob %s: %w", cid, err)
	}

	return nil
}

// Ensure IPFSStore implements Store.
var _ Store = (*IPFSStore)(nil)
