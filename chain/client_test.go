package chain

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"fractal-bot/errors"
)

type recordedCall struct {
	Method string
	To     string
	Data   string
	Block  string
}

// fakeNode answers every eth_call with whatever handler returns for the
// decoded call object, and records what arrived.
func fakeNode(t *testing.T, handler func(to, data string) string) (*httptest.Server, *[]recordedCall) {
	t.Helper()
	calls := &[]recordedCall{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int64             `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		var call callObject
		require.NoError(t, json.Unmarshal(request.Params[0], &call))
		var block string
		require.NoError(t, json.Unmarshal(request.Params[1], &block))
		*calls = append(*calls, recordedCall{Method: request.Method, To: call.To, Data: call.Data, Block: block})

		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      request.ID,
			"result":  handler(call.To, call.Data),
		})
	}))
	t.Cleanup(server.Close)
	return server, calls
}

func TestClient_Call(t *testing.T) {
	req := require.New(t)
	server, calls := fakeNode(t, func(_, _ string) string { return "0xbeef" })
	client := NewClient(DefaultConfig(server.URL), logs.GetLoggerFromLevel(slog.LevelError))

	result, err := client.Call(context.Background(), TokenAddress, "0x70a08231")

	req.NoError(err)
	req.Equal("0xbeef", result)
	req.Len(*calls, 1)
	req.Equal("eth_call", (*calls)[0].Method)
	req.Equal(TokenAddress, (*calls)[0].To)
	req.Equal("0x70a08231", (*calls)[0].Data)
	req.Equal("latest", (*calls)[0].Block)
}

func TestClient_Call_NodeError(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32000, "message": "header not found"},
		})
	}))
	t.Cleanup(server.Close)
	client := NewClient(DefaultConfig(server.URL), logs.GetLoggerFromLevel(slog.LevelError))

	_, err := client.Call(context.Background(), TokenAddress, "0x70a08231")

	req.ErrorIs(err, errors.ErrRPCUnavailable)
	req.ErrorContains(err, "header not found")
}

func TestClient_Call_BadStatus(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	client := NewClient(DefaultConfig(server.URL), logs.GetLoggerFromLevel(slog.LevelError))

	_, err := client.Call(context.Background(), TokenAddress, "0x70a08231")

	req.ErrorIs(err, errors.ErrRPCUnavailable)
}

func TestClient_Call_NodeDown(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	endpoint := server.URL
	server.Close()
	client := NewClient(DefaultConfig(endpoint), logs.GetLoggerFromLevel(slog.LevelError))

	_, err := client.Call(context.Background(), TokenAddress, "0x70a08231")

	req.ErrorIs(err, errors.ErrRPCUnavailable)
}
