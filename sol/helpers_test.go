package sol

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"sandwichcheck/logger"

	"github.com/gagliardetto/solana-go"
)

func init() {
	logger.Discard()
}

func testKey(n byte) solana.PublicKey {
	var b [32]byte
	b[0], b[31] = n, n
	return solana.PublicKeyFromBytes(b[:])
}

func testSig(n byte) solana.Signature {
	var s solana.Signature
	s[0], s[63] = n, n
	return s
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcHandler answers one JSON-RPC call with a result, or with an error and an HTTP status.
type rpcHandler func(method string, params []json.RawMessage) (result any, rerr *rpcError, status int)

// fakeNode is a JSON-RPC server that counts calls per method.
type fakeNode struct {
	*httptest.Server
	mu    sync.Mutex
	calls map[string]int
}

func newFakeNode(t *testing.T, h rpcHandler) *fakeNode {
	n := &fakeNode{calls: make(map[string]int)}
	n.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad rpc request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n.mu.Lock()
		n.calls[req.Method]++
		n.mu.Unlock()

		result, rerr, status := h(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rerr != nil {
			resp["error"] = rerr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		if status != 0 {
			w.WriteHeader(status)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(n.Close)
	return n
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}
