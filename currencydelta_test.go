package poolcore

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestCurrencyDeltaLedgerGetDefaultsToZero(t *testing.T) {
	l := NewCurrencyDeltaLedger()
	var target, currency [20]byte
	got := l.Get(target, currency)
	require.True(t, got.IsZero())
}

func TestCurrencyDeltaLedgerApplyTracksNonzeroCount(t *testing.T) {
	l := NewCurrencyDeltaLedger()
	var target, currency [20]byte

	l.Apply(target, currency, NewInt128(uint256.NewInt(100), false))
	require.Equal(t, 1, l.NonzeroCount())

	l.Apply(target, currency, NewInt128(uint256.NewInt(100), true))
	require.Equal(t, 0, l.NonzeroCount())
	require.True(t, l.Get(target, currency).IsZero())
}

func TestCurrencyDeltaLedgerApplyAcrossMultipleAccounts(t *testing.T) {
	l := NewCurrencyDeltaLedger()
	var targetA, targetB, currency [20]byte
	targetB[0] = 1

	l.Apply(targetA, currency, NewInt128(uint256.NewInt(10), false))
	l.Apply(targetB, currency, NewInt128(uint256.NewInt(20), false))
	require.Equal(t, 2, l.NonzeroCount())

	updated := l.Apply(targetA, currency, NewInt128(uint256.NewInt(5), false))
	require.Equal(t, "15", updated.Abs.Dec())
	require.Equal(t, 2, l.NonzeroCount())
}
