// Package chain talks to an Ethereum JSON-RPC node. It covers exactly what
// the bot needs: read-only eth_call lookups for ENS resolution and ERC-20
// balances. The node endpoint is configured once at startup and every
// failure surfaces as an external-dependency error.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"fractal-bot/errors"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// DefaultConfig keeps a short timeout so a stuck node cannot hold a session
// worker for long.
func DefaultConfig(endpoint string) Config {
	return Config{Endpoint: endpoint, Timeout: defaultTimeout}
}

// Client speaks JSON-RPC against one node endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *slog.Logger
	nextID     atomic.Int64
}

func NewClient(config Config, log *slog.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &Client{
		endpoint:   config.Endpoint,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int64  `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

type callObject struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// Call runs eth_call against the latest block and returns the raw hex
// result. An empty contract answer comes back as "0x".
func (c *Client) Call(ctx context.Context, to string, data string) (string, error) {
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  "eth_call",
		Params:  []any{callObject{To: to, Data: data}, "latest"},
		ID:      c.nextID.Add(1),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.log.Warn(fmt.Sprintf("Node call failed : %v", err))
		return "", fmt.Errorf("%w: %v", errors.ErrRPCUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", errors.ErrRPCUnavailable, response.StatusCode)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrRPCUnavailable, err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrRPCUnavailable, decoded.Error.Message)
	}
	return decoded.Result, nil
}
