// Package testutils provides an in-process JSON-RPC node for tests.
package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RPCError is a JSON-RPC error object returned by a Handler.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// Handler answers a single JSON-RPC method. A non-nil *RPCError is sent as the error member.
type Handler func(params []json.RawMessage) (any, *RPCError)

type request struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCServer is a fake Ethereum JSON-RPC node. By default it answers eth_blockNumber with 0x1
// and eth_chainId with 0xa (Optimism). It is closed automatically when the test ends.
type RPCServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
}

// NewRPCServer starts a fake node.
func NewRPCServer(t *testing.T) *RPCServer {
	t.Helper()

	s := &RPCServer{
		handlers: map[string]Handler{
			"eth_blockNumber": Result("0x1"),
			"eth_chainId":     Result("0xa"),
		},
		calls: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))

	t.Cleanup(s.Close)

	return s
}

// Handle registers or replaces the handler for method.
func (s *RPCServer) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[method] = h
}

// Calls returns how many times method was requested.
func (s *RPCServer) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[method]
}

func (s *RPCServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls[req.Method]++
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()

	resp := response{JSONRPC: "2.0", ID: req.ID}
	if !ok {
		resp.Error = &RPCError{Code: -32601, Message: "the method " + req.Method + " does not exist/is not available"}
	} else {
		resp.Result, resp.Error = h(req.Params)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Result returns a Handler that always answers with v.
func Result(v any) Handler {
	return func([]json.RawMessage) (any, *RPCError) { return v, nil }
}

// Fail returns a Handler that always answers with a JSON-RPC error.
func Fail(code int, message string) Handler {
	return func([]json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: code, Message: message}
	}
}
