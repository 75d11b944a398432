package tokenamount

import (
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()

	n, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "invalid integer %q", s)

	return n
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		decimals uint
		want     string
	}{
		{name: "one whole token", amount: "1000000000000000000", decimals: 18, want: "1"},
		{name: "one and a half", amount: "1500000000000000000", decimals: 18, want: "1.5"},
		{name: "leading fraction zeros", amount: "5", decimals: 3, want: "0.005"},
		{name: "two decimals", amount: "123456", decimals: 2, want: "1234.56"},
		{name: "zero decimals", amount: "123456", decimals: 0, want: "123456"},
		{name: "zero amount", amount: "0", decimals: 18, want: "0"},
		{name: "trailing zeros stripped", amount: "1230000", decimals: 6, want: "1.23"},
		{name: "fraction only", amount: "999999", decimals: 6, want: "0.999999"},
		{name: "max decimals", amount: "1", decimals: MaxDecimals, want: "0.000000000000000000000000000001"},
		{
			name:     "beyond 64 bits",
			amount:   "340282366920938463463374607431768211455",
			decimals: 18,
			want:     "340282366920938463463.374607431768211455",
		},
		{
			name:     "max uint256",
			amount:   "115792089237316195423570985008687907853269984665640564039457584007913129639935",
			decimals: 18,
			want:     "115792089237316195423570985008687907853269984665640564039457.584007913129639935",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Format(mustBig(t, tt.amount), tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_ZeroAmountIsZeroForAllDecimals(t *testing.T) {
	t.Parallel()

	for d := uint(0); d <= MaxDecimals; d++ {
		got, err := Format(big.NewInt(0), d)
		require.NoError(t, err)
		assert.Equal(t, "0", got, "decimals %d", d)
	}
}

func TestFormat_ZeroDecimalsIsExactInteger(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"0", "7", "18446744073709551616", "340282366920938463463374607431768211455"} {
		got, err := Format(mustBig(t, s), 0)
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.NotContains(t, got, ".")
	}
}

func TestFormat_Unrepresentable(t *testing.T) {
	t.Parallel()

	for _, d := range []uint{MaxDecimals + 1, 77, 255, 1 << 20} {
		got, err := Format(big.NewInt(1), d)
		require.ErrorIs(t, err, ErrUnrepresentable)
		assert.Empty(t, got)
	}
}

func TestFormat_NegativeOrNil(t *testing.T) {
	t.Parallel()

	_, err := Format(nil, 18)
	require.ErrorIs(t, err, ErrNegativeAmount)

	_, err = Format(big.NewInt(-1), 18)
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestFormat_DoesNotMutateAmount(t *testing.T) {
	t.Parallel()

	amount := big.NewInt(123456)
	_, err := Format(amount, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(123456), amount.Int64())
}

// parseFormatted rebuilds the raw amount from a formatted string.
func parseFormatted(t *testing.T, s string, decimals uint) *big.Int {
	t.Helper()

	whole, frac, _ := strings.Cut(s, ".")
	require.LessOrEqual(t, len(frac), int(decimals))
	frac += strings.Repeat("0", int(decimals)-len(frac))

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	out := new(big.Int).Mul(mustBig(t, whole), scale)
	if frac != "" {
		out.Add(out, mustBig(t, frac))
	}

	return out
}

func TestFormat_RoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	limit := new(big.Int).Lsh(big.NewInt(1), 256)

	amounts := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(10),
		new(big.Int).Sub(limit, big.NewInt(1)),
	}
	for range 50 {
		amounts = append(amounts, new(big.Int).Rand(rng, limit))
	}

	for d := uint(0); d <= MaxDecimals; d++ {
		for _, amount := range amounts {
			got, err := Format(amount, d)
			require.NoError(t, err)
			require.Equal(t, 0, parseFormatted(t, got, d).Cmp(amount), "decimals %d amount %s formatted %s", d, amount, got)
			assert.False(t, strings.HasSuffix(got, "0") && strings.Contains(got, "."), "trailing zero in %s", got)
			assert.Empty(t, strings.Trim(got, "0123456789."), "unexpected characters in %s", got)
			assert.LessOrEqual(t, strings.Count(got, "."), 1)
		}
	}
}

func TestMustFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.5", MustFormat(big.NewInt(15), 1))
	assert.Panics(t, func() { MustFormat(big.NewInt(15), MaxDecimals+1) })
}
