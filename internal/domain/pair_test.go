package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_NewPair_NormalizesCodes(t *testing.T) {
	t.Parallel()
	p, err := NewPair(" btc ", "usd")
	require.NoError(t, err)
	require.Equal(t, "BTC_USD", p.Key())
	require.Equal(t, "BTC/USD", p.String())
}

func Test_ValidateCode_Rejects(t *testing.T) {
	t.Parallel()
	for _, code := range []string{"", "B", "TOOLONGX", "BT C", "bt!"} {
		_, err := ValidateCode(code)
		require.ErrorIs(t, err, ErrValidation, "code %q", code)
	}
}

func Test_ParsePairKey(t *testing.T) {
	t.Parallel()
	p, ok := ParsePairKey("BTC_USD")
	require.True(t, ok)
	require.Equal(t, Pair{From: "BTC", To: "USD"}, p)

	for _, key := range []string{"", "BTC", "_USD", "BTC_"} {
		_, ok := ParsePairKey(key)
		require.False(t, ok, "key %q", key)
	}
}

func Test_ValidateAmount(t *testing.T) {
	t.Parallel()
	require.NoError(t, ValidateAmount(0.0001))
	require.ErrorIs(t, ValidateAmount(0), ErrValidation)
	require.ErrorIs(t, ValidateAmount(-5), ErrValidation)
}
