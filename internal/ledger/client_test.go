package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCClient_FetchAccount(t *testing.T) {
	account := []byte{1, 2, 3, 4, 5}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getAccountInfo", req["method"])

		params := req["params"].([]any)
		assert.Equal(t, "VaultAddr111", params[0])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"value": map[string]any{
					"data": []string{base64.StdEncoding.EncodeToString(account), "base64"},
				},
			},
		})
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL)
	got, err := c.FetchAccount(context.Background(), "VaultAddr111")
	require.NoError(t, err)
	assert.Equal(t, account, got)
}

func TestRPCClient_AccountNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// value: null — аккаунта нет
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":null}}`))
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL)
	_, err := c.FetchAccount(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRPCClient_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`))
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL)
	_, err := c.FetchAccount(context.Background(), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid params")
}

func TestRPCClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL)
	_, err := c.FetchAccount(context.Background(), "x")
	assert.Error(t, err)
}
