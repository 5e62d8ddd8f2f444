package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrAccountNotFound — аккаунт по адресу отсутствует на леджере.
var ErrAccountNotFound = errors.New("ledger: account not found")

// AccountFetcher — источник сырых байтов аккаунта. Интерфейс явно
// инжектируется в сервисы, чтобы ядро тестировалось без сети.
type AccountFetcher interface {
	FetchAccount(ctx context.Context, address string) ([]byte, error)
}

// RPCClient ходит в JSON-RPC узел леджера за данными аккаунтов.
type RPCClient struct {
	endpoint string
	http     *http.Client
}

// NewRPCClient создаёт клиент для указанного RPC endpoint.
func NewRPCClient(endpoint string) *RPCClient {
	return &RPCClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result struct {
		Value *struct {
			// data: [<base64>, "base64"]
			Data []string `json:"data"`
		} `json:"value"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchAccount запрашивает getAccountInfo и возвращает байты аккаунта.
func (c *RPCClient) FetchAccount(ctx context.Context, address string) ([]byte, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getAccountInfo",
		Params:  []any{address, map[string]string{"encoding": "base64"}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var rr rpcResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, fmt.Errorf("rpc decode: %w", err)
	}
	if rr.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", rr.Error.Code, rr.Error.Message)
	}
	if rr.Result.Value == nil || len(rr.Result.Value.Data) == 0 {
		return nil, ErrAccountNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(rr.Result.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("rpc account data: %w", err)
	}
	return raw, nil
}
