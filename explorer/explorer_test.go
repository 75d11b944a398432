package explorer

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/liquidity-explorer/explorer/chain/evm"
	"github.com/liquidity-explorer/explorer/chain/evm/erc20"
	"github.com/liquidity-explorer/explorer/chain/evm/erc20/erc20test"
	"github.com/liquidity-explorer/explorer/chain/evm/rpcclient"
	"github.com/liquidity-explorer/explorer/pkg/logger"
)

const (
	opTokenAddress = "0x4200000000000000000000000000000000000042"
	walletAddress  = "0x2A82Ae142b2e62Cb7D10b55E323ACB1Cab663a26"
)

// MockReader is a testify mock of erc20.Reader.
type MockReader struct {
	mock.Mock
}

func (m *MockReader) Name(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockReader) Symbol(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockReader) Decimals(ctx context.Context) (uint8, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint8), args.Error(1)
}

func (m *MockReader) TotalSupply(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockReader) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*big.Int), args.Error(1)
}

// stubBackend answers chain queries with fixed values. Contract calls are never made
// because tests inject a MockReader.
type stubBackend struct {
	chainID  *big.Int
	block    uint64
	chainErr error
}

func (b *stubBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return nil, errors.New("unexpected CodeAt")
}

func (b *stubBackend) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, errors.New("unexpected CallContract")
}

func (b *stubBackend) ChainID(context.Context) (*big.Int, error) { return b.chainID, b.chainErr }

func (b *stubBackend) BlockNumber(context.Context) (uint64, error) { return b.block, nil }

func newMockClient(t *testing.T, r *MockReader) *Client {
	t.Helper()

	return New(&stubBackend{}, logger.Test(t), WithReaderFactory(func(token common.Address, _ bind.ContractCaller) erc20.Reader {
		assert.Equal(t, common.HexToAddress(opTokenAddress), token)
		return r
	}))
}

func expectMetadata(r *MockReader, decimals uint8, supply *big.Int) {
	r.On("Name", mock.Anything).Return("Optimism", nil)
	r.On("Symbol", mock.Anything).Return("OP", nil)
	r.On("Decimals", mock.Anything).Return(decimals, nil)
	r.On("TotalSupply", mock.Anything).Return(supply, nil)
}

func TestClient_TokenData(t *testing.T) {
	t.Parallel()

	r := &MockReader{}
	expectMetadata(r, 18, big.NewInt(1e18))

	data, err := newMockClient(t, r).TokenData(t.Context(), opTokenAddress)
	require.NoError(t, err)
	r.AssertExpectations(t)

	assert.Equal(t, common.HexToAddress(opTokenAddress), data.Address)
	assert.Equal(t, "Optimism", data.Name)
	assert.Equal(t, "OP", data.Symbol)
	assert.Equal(t, uint8(18), data.Decimals)

	supply, err := data.FormattedTotalSupply()
	require.NoError(t, err)
	assert.Equal(t, "1", supply)
}

func TestClient_TokenData_abortsOnFirstFailure(t *testing.T) {
	t.Parallel()

	r := &MockReader{}
	r.On("Name", mock.Anything).Return("Optimism", nil)
	r.On("Symbol", mock.Anything).Return("", errors.New("connection refused"))

	_, err := newMockClient(t, r).TokenData(t.Context(), opTokenAddress)
	require.ErrorContains(t, err, "failed to get token symbol: connection refused")
	r.AssertExpectations(t)
	r.AssertNotCalled(t, "Decimals", mock.Anything)
	r.AssertNotCalled(t, "TotalSupply", mock.Anything)
}

func TestClient_TokenData_invalidAddress(t *testing.T) {
	t.Parallel()

	r := &MockReader{}
	_, err := newMockClient(t, r).TokenData(t.Context(), "0xnothex")
	require.ErrorIs(t, err, evm.ErrInvalidAddress)
	require.ErrorContains(t, err, "token address")
	r.AssertNotCalled(t, "Name", mock.Anything)
}

func TestClient_TokenBalance(t *testing.T) {
	t.Parallel()

	r := &MockReader{}
	r.On("BalanceOf", mock.Anything, common.HexToAddress(walletAddress)).Return(big.NewInt(42), nil)

	balance, err := newMockClient(t, r).TokenBalance(t.Context(), opTokenAddress, walletAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.Int64())
	r.AssertExpectations(t)

	_, err = newMockClient(t, r).TokenBalance(t.Context(), opTokenAddress, "wallet")
	require.ErrorIs(t, err, evm.ErrInvalidAddress)
	require.ErrorContains(t, err, "wallet address")
}

func TestClient_Balance(t *testing.T) {
	t.Parallel()

	r := &MockReader{}
	expectMetadata(r, 18, big.NewInt(1e18))
	r.On("BalanceOf", mock.Anything, common.HexToAddress(walletAddress)).Return(big.NewInt(1_500_000_000_000_000_000), nil)

	got, err := newMockClient(t, r).Balance(t.Context(), opTokenAddress, walletAddress)
	require.NoError(t, err)
	r.AssertExpectations(t)

	assert.Equal(t, "OP", got.Token.Symbol)
	assert.Equal(t, common.HexToAddress(walletAddress), got.Wallet)
	assert.Equal(t, "1500000000000000000", got.Raw.String())
	assert.Equal(t, "1.5", got.Formatted)
}

func TestClient_Balance_unrepresentable(t *testing.T) {
	t.Parallel()

	r := &MockReader{}
	expectMetadata(r, 77, big.NewInt(1))
	r.On("BalanceOf", mock.Anything, mock.Anything).Return(big.NewInt(5), nil)

	lggr, logs := logger.TestObserved(t, zapcore.WarnLevel)
	c := New(&stubBackend{}, lggr, WithReaderFactory(func(common.Address, bind.ContractCaller) erc20.Reader { return r }))

	got, err := c.Balance(t.Context(), opTokenAddress, walletAddress)
	require.NoError(t, err)
	assert.Equal(t, "5", got.Raw.String())
	assert.Empty(t, got.Formatted)
	assert.Equal(t, uint8(77), got.Token.Decimals)
	assert.Equal(t, 1, logs.FilterMessageSnippet("cannot be formatted").Len())
}

func TestClient_badChecksumIsWarned(t *testing.T) {
	t.Parallel()

	const badChecksum = "0x2a82Ae142b2e62Cb7D10b55E323ACB1Cab663a26"

	r := &MockReader{}
	r.On("BalanceOf", mock.Anything, common.HexToAddress(walletAddress)).Return(big.NewInt(42), nil)

	lggr, logs := logger.TestObserved(t, zapcore.WarnLevel)
	c := New(&stubBackend{}, lggr, WithReaderFactory(func(common.Address, bind.ContractCaller) erc20.Reader { return r }))

	balance, err := c.TokenBalance(t.Context(), opTokenAddress, badChecksum)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.Int64())

	warned := logs.FilterMessageSnippet("EIP-55").All()
	require.Len(t, warned, 1)
	assert.Equal(t, badChecksum, warned[0].ContextMap()["wallet"])
	assert.Equal(t, walletAddress, warned[0].ContextMap()["checksummed"])

	_, err = c.TokenBalance(t.Context(), opTokenAddress, walletAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessageSnippet("EIP-55").Len(), "valid checksum is not warned")
}

func TestClient_Balance_errors(t *testing.T) {
	t.Parallel()

	t.Run("balance call fails", func(t *testing.T) {
		t.Parallel()

		r := &MockReader{}
		expectMetadata(r, 18, big.NewInt(1))
		r.On("BalanceOf", mock.Anything, mock.Anything).Return(nil, errors.New("execution reverted"))

		_, err := newMockClient(t, r).Balance(t.Context(), opTokenAddress, walletAddress)
		require.ErrorContains(t, err, "failed to get token balance: execution reverted")
	})

	t.Run("addresses are validated before any call", func(t *testing.T) {
		t.Parallel()

		r := &MockReader{}
		_, err := newMockClient(t, r).Balance(t.Context(), "bad", walletAddress)
		require.ErrorIs(t, err, evm.ErrInvalidAddress)

		_, err = newMockClient(t, r).Balance(t.Context(), opTokenAddress, "bad")
		require.ErrorIs(t, err, evm.ErrInvalidAddress)

		r.AssertNotCalled(t, "BalanceOf", mock.Anything, mock.Anything)
		r.AssertNotCalled(t, "Name", mock.Anything)
	})
}

func TestClient_ChainInfo(t *testing.T) {
	t.Parallel()

	c := New(&stubBackend{chainID: big.NewInt(10), block: 123}, logger.Test(t))
	info, err := c.ChainInfo(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.ChainID.Int64())
	assert.Equal(t, chainsel.ETHEREUM_MAINNET_OPTIMISM_1.Name, info.Name)
	assert.Equal(t, uint64(123), info.BlockNumber)

	c = New(&stubBackend{chainID: big.NewInt(987654321987), block: 1}, logger.Test(t))
	info, err = c.ChainInfo(t.Context())
	require.NoError(t, err)
	assert.Empty(t, info.Name)

	c = New(&stubBackend{chainErr: errors.New("dial tcp: connection refused")}, logger.Test(t))
	_, err = c.ChainInfo(t.Context())
	require.ErrorContains(t, err, "failed to get chain ID")
}

// TestClient_overJSONRPC runs the explorer end to end against a fake node.
func TestClient_overJSONRPC(t *testing.T) {
	t.Parallel()

	balance, ok := new(big.Int).SetString("340282366920938463463374607431768211455", 10)
	require.True(t, ok)

	tok := erc20test.OPToken()
	tok.Balances[common.HexToAddress(walletAddress)] = balance
	srv := erc20test.NewServer(t, tok)

	mc, err := rpcclient.NewMultiClient(logger.Test(t), rpcclient.RPCConfig{
		ChainName: "optimism",
		RPCs:      []rpcclient.RPC{{Name: "fake", HTTPURL: srv.URL}},
	})
	require.NoError(t, err)
	t.Cleanup(mc.Close)

	c := New(mc, logger.Test(t))

	data, err := c.TokenData(t.Context(), opTokenAddress)
	require.NoError(t, err)
	assert.Equal(t, "Optimism", data.Name)
	assert.Equal(t, "OP", data.Symbol)
	assert.Equal(t, uint8(18), data.Decimals)
	assert.Equal(t, tok.TotalSupply.String(), data.TotalSupply.String())

	got, err := c.Balance(t.Context(), opTokenAddress, walletAddress)
	require.NoError(t, err)
	assert.Equal(t, "340282366920938463463.374607431768211455", got.Formatted)

	info, err := c.ChainInfo(t.Context())
	require.NoError(t, err)
	assert.Equal(t, chainsel.ETHEREUM_MAINNET_OPTIMISM_1.Name, info.Name)

	_, err = c.TokenData(t.Context(), "0x00000000000000000000000000000000000000aa")
	require.ErrorIs(t, err, erc20.ErrDecode)
}
