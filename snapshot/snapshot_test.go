package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/concentrated-go/poolcore"
)

func testPool(t *testing.T) *poolcore.Pool {
	t.Helper()
	key, err := poolcore.NewPoolKey(
		common.HexToAddress("0x1000000000000000000000000000000000000000"),
		common.HexToAddress("0x2000000000000000000000000000000000000000"),
		3000, 60,
	)
	require.NoError(t, err)
	p := poolcore.NewPool(key)
	_, err = p.Initialize(poolcore.Q96, 3000)
	require.NoError(t, err)
	return p
}

func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "snapshot.db")
	store, err := Open(dsn)
	require.NoError(t, err)
	defer store.Close()

	pool := testPool(t)
	var owner [20]byte
	_, err = pool.ModifyLiquidity(poolcore.ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -60,
		TickUpper:      60,
		LiquidityDelta: poolcore.NewInt128(uint256.NewInt(12345), false),
	})
	require.NoError(t, err)

	require.NoError(t, store.Save(pool))

	loaded, err := store.Load(pool.Key())
	require.NoError(t, err)
	require.Equal(t, pool.Key(), loaded.Key())
	require.True(t, loaded.Liquidity().Eq(pool.Liquidity()))
}

func TestStoreSaveOverwritesExistingRow(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "snapshot.db")
	store, err := Open(dsn)
	require.NoError(t, err)
	defer store.Close()

	pool := testPool(t)
	require.NoError(t, store.Save(pool))

	var owner [20]byte
	_, err = pool.ModifyLiquidity(poolcore.ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -60,
		TickUpper:      60,
		LiquidityDelta: poolcore.NewInt128(uint256.NewInt(999), false),
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(pool))

	loaded, err := store.Load(pool.Key())
	require.NoError(t, err)
	require.Equal(t, "999", loaded.Liquidity().Dec())
}

func TestStoreLoadMissingReturnsRecordNotFound(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "snapshot.db")
	store, err := Open(dsn)
	require.NoError(t, err)
	defer store.Close()

	key, err := poolcore.NewPoolKey(
		common.HexToAddress("0x3000000000000000000000000000000000000000"),
		common.HexToAddress("0x4000000000000000000000000000000000000000"),
		500, 10,
	)
	require.NoError(t, err)

	_, err = store.Load(key)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
