package soroban

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/require"
)

type rpcHandler func(params map[string]any) (any, *RPCError)

// Minimal JSON-RPC server answering with canned results
type fakeRPC struct {
	mtx      sync.Mutex
	handlers map[string]rpcHandler
	calls    map[string]int
	server   *httptest.Server
}

func newFakeRPC() (self *fakeRPC) {
	self = &fakeRPC{
		handlers: make(map[string]rpcHandler),
		calls:    make(map[string]int),
	}
	self.server = httptest.NewServer(http.HandlerFunc(self.serve))
	return
}

func (self *fakeRPC) on(method string, h rpcHandler) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.handlers[method] = h
}

func (self *fakeRPC) count(method string) int {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.calls[method]
}

func (self *fakeRPC) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Id     uint64         `json:"id"`
		Method string         `json:"method"`
		Params map[string]any `json:"params"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	self.mtx.Lock()
	self.calls[req.Method]++
	h := self.handlers[req.Method]
	self.mtx.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": req.Id}
	if h == nil {
		resp["error"] = &RPCError{Code: -32601, Message: "method not found"}
	} else {
		result, rpcErr := h(req.Params)
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (self *fakeRPC) Close() {
	self.server.Close()
}

func mustBase64(t *testing.T, v any) string {
	out, err := xdr.MarshalBase64(v)
	require.Nil(t, err)
	return out
}

func contractAddress(t *testing.T, seed byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed
	}
	out, err := strkey.Encode(strkey.VersionByteContract, raw)
	require.Nil(t, err)
	return out
}

// Name of the contract function invoked by an encoded transaction
func invokedFunction(t *testing.T, params map[string]any) string {
	var envelope xdr.TransactionEnvelope
	err := xdr.SafeUnmarshalBase64(params["transaction"].(string), &envelope)
	require.Nil(t, err)

	ops := envelope.Operations()
	require.Len(t, ops, 1)
	require.NotNil(t, ops[0].Body.InvokeHostFunctionOp)
	return string(ops[0].Body.InvokeHostFunctionOp.HostFunction.InvokeContract.FunctionName)
}
