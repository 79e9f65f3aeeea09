package network

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultRegistryURL is the public chain registry consulted when a chain is not in the static
// table.
const DefaultRegistryURL = "https://chainid.network/chains_mini.json"

// RegistryEntry is one chain of the public chain registry document.
type RegistryEntry struct {
	Name      string   `json:"name"`
	ChainID   uint64   `json:"chainId"`
	NetworkID uint64   `json:"networkId"`
	RPC       []string `json:"rpc"`
}

// FirstRPC returns the first plain HTTP(S) RPC URL of the entry. URLs that need an API key
// template (e.g. ${INFURA_API_KEY}) are skipped.
func (e RegistryEntry) FirstRPC() (string, bool) {
	for _, url := range e.RPC {
		if strings.Contains(url, "${") {
			continue
		}
		if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
			return url, true
		}
	}

	return "", false
}

// RegistryClient fetches the chain registry document. The document is fetched at most once
// per client; failed fetches are not cached.
type RegistryClient struct {
	url    string
	client *resty.Client

	mu      sync.Mutex
	entries []RegistryEntry
}

// NewRegistryClient returns a client for the registry document at url.
func NewRegistryClient(url string) *RegistryClient {
	if url == "" {
		url = DefaultRegistryURL
	}

	return &RegistryClient{
		url: url,
		client: resty.New().
			SetTimeout(30*time.Second).
			SetRetryCount(2).
			SetHeader("Accept", "application/json"),
	}
}

// Entries returns the registry entries, fetching the document on first use.
func (c *RegistryClient) Entries(ctx context.Context) ([]RegistryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries != nil {
		return c.entries, nil
	}

	var entries []RegistryEntry
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&entries).
		ForceContentType("application/json").
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain registry %s: %w", c.url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch chain registry %s: status %s", c.url, resp.Status())
	}

	if entries == nil {
		entries = []RegistryEntry{}
	}
	c.entries = entries

	return entries, nil
}

// Lookup finds the entry whose chain ID equals id, falling back to an entry whose network ID
// equals id.
func (c *RegistryClient) Lookup(ctx context.Context, id uint64) (RegistryEntry, bool, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return RegistryEntry{}, false, err
	}

	for _, e := range entries {
		if e.ChainID == id {
			return e, true, nil
		}
	}
	for _, e := range entries {
		if e.NetworkID == id {
			return e, true, nil
		}
	}

	return RegistryEntry{}, false, nil
}
