// Package erc20test serves fake ERC20 tokens over JSON-RPC for tests.
package erc20test

import (
	"encoding/json"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/liquidity-explorer/explorer/chain/evm/erc20"
	"github.com/liquidity-explorer/explorer/internal/testutils"
)

// Token is the on-chain state of a fake ERC20 contract.
type Token struct {
	Address     common.Address
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
	Balances    map[common.Address]*big.Int

	// Reverts maps a method name to a revert message returned instead of a result.
	Reverts map[string]string
	// RawOutputs maps a method name to raw return data, bypassing ABI encoding.
	RawOutputs map[string][]byte
}

// OPToken returns the Optimism governance token as deployed on OP mainnet.
func OPToken() Token {
	supply, _ := new(big.Int).SetString("4294967296000000000000000000", 10)

	return Token{
		Address:     common.HexToAddress("0x4200000000000000000000000000000000000042"),
		Name:        "Optimism",
		Symbol:      "OP",
		Decimals:    18,
		TotalSupply: supply,
		Balances:    map[common.Address]*big.Int{},
	}
}

// Server is a fake node hosting ERC20 tokens.
type Server struct {
	*testutils.RPCServer

	mu     sync.Mutex
	tokens map[common.Address]Token
}

type callArgs struct {
	To    *common.Address `json:"to"`
	Input hexutil.Bytes   `json:"input"`
	Data  hexutil.Bytes   `json:"data"`
}

// NewServer starts a fake node hosting tokens.
func NewServer(t *testing.T, tokens ...Token) *Server {
	t.Helper()

	s := &Server{
		RPCServer: testutils.NewRPCServer(t),
		tokens:    make(map[common.Address]Token),
	}
	for _, tok := range tokens {
		s.AddToken(tok)
	}

	s.Handle("eth_call", s.ethCall)
	s.Handle("eth_getCode", s.ethGetCode)

	return s
}

// AddToken deploys or replaces a token.
func (s *Server) AddToken(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[tok.Address] = tok
}

func (s *Server) token(addr common.Address) (Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.tokens[addr]

	return tok, ok
}

func (s *Server) ethGetCode(params []json.RawMessage) (any, *testutils.RPCError) {
	var addr common.Address
	if len(params) == 0 || json.Unmarshal(params[0], &addr) != nil {
		return nil, &testutils.RPCError{Code: -32602, Message: "invalid params"}
	}
	if _, ok := s.token(addr); !ok {
		return "0x", nil
	}

	return "0x6080604052", nil
}

func (s *Server) ethCall(params []json.RawMessage) (any, *testutils.RPCError) {
	var args callArgs
	if len(params) == 0 || json.Unmarshal(params[0], &args) != nil || args.To == nil {
		return nil, &testutils.RPCError{Code: -32602, Message: "invalid params"}
	}

	input := args.Input
	if len(input) == 0 {
		input = args.Data
	}

	tok, ok := s.token(*args.To)
	if !ok || len(input) < 4 {
		// Calls to accounts without code succeed with empty return data.
		return "0x", nil
	}

	method, err := erc20.ABI().MethodById(input[:4])
	if err != nil {
		return nil, &testutils.RPCError{Code: 3, Message: "execution reverted"}
	}

	if reason, ok := tok.Reverts[method.Name]; ok {
		return nil, &testutils.RPCError{Code: 3, Message: "execution reverted: " + reason, Data: "0x"}
	}
	if raw, ok := tok.RawOutputs[method.Name]; ok {
		return hexutil.Encode(raw), nil
	}

	var out []byte
	switch method.Name {
	case "name":
		out, err = method.Outputs.Pack(tok.Name)
	case "symbol":
		out, err = method.Outputs.Pack(tok.Symbol)
	case "decimals":
		out, err = method.Outputs.Pack(tok.Decimals)
	case "totalSupply":
		out, err = method.Outputs.Pack(orZero(tok.TotalSupply))
	case "balanceOf":
		var decoded []any
		decoded, err = method.Inputs.Unpack(input[4:])
		if err == nil {
			owner, _ := decoded[0].(common.Address)
			out, err = method.Outputs.Pack(orZero(tok.Balances[owner]))
		}
	}
	if err != nil {
		return nil, &testutils.RPCError{Code: -32603, Message: strings.TrimSpace(err.Error())}
	}

	return hexutil.Encode(out), nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
