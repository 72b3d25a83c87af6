// Command poolctl drives a single in-memory pool engine from the
// shell: initialize it, mint/burn liquidity, swap, and inspect its
// state. Each invocation loads its pool from the configured snapshot
// store, applies one operation, and saves the result back — there is
// no long-running daemon.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/concentrated-go/poolcore"
	"github.com/concentrated-go/poolcore/display"
	"github.com/concentrated-go/poolcore/snapshot"
)

var (
	flagDSN         string
	flagToken0      string
	flagToken1      string
	flagFee         uint32
	flagTickSpacing int32
)

func main() {
	poolcore.ConfigureLogging()

	root := &cobra.Command{
		Use:   "poolctl",
		Short: "Drive a concentrated-liquidity pool engine from the command line",
	}
	root.PersistentFlags().StringVar(&flagDSN, "db", "poolctl.db", "snapshot database path")
	root.PersistentFlags().StringVar(&flagToken0, "token0", "", "token0 address")
	root.PersistentFlags().StringVar(&flagToken1, "token1", "", "token1 address")
	root.PersistentFlags().Uint32Var(&flagFee, "fee", 3000, "pool fee in hundredths of a basis point")
	root.PersistentFlags().Int32Var(&flagTickSpacing, "tick-spacing", 60, "tick spacing")

	root.AddCommand(initCmd(), mintCmd(), burnCmd(), swapCmd(), inspectCmd())

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("poolctl failed")
		os.Exit(1)
	}
}

func poolKey() (poolcore.PoolKey, error) {
	return poolcore.NewPoolKey(
		common.HexToAddress(flagToken0),
		common.HexToAddress(flagToken1),
		flagFee,
		flagTickSpacing,
	)
}

func openStore() (*snapshot.Store, error) {
	return snapshot.Open(flagDSN)
}

func initCmd() *cobra.Command {
	var sqrtPriceDec string
	var lpFee uint32
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new pool at a given sqrt price",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := poolKey()
			if err != nil {
				return err
			}
			sqrtPrice, err := uint256.FromDecimal(sqrtPriceDec)
			if err != nil {
				return fmt.Errorf("parsing --sqrt-price: %w", err)
			}
			pool := poolcore.NewPool(key)
			tick, err := pool.Initialize(sqrtPrice, lpFee)
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(pool); err != nil {
				return err
			}
			fmt.Printf("initialized pool %x at tick %d\n", key.ID(), tick)
			return nil
		},
	}
	cmd.Flags().StringVar(&sqrtPriceDec, "sqrt-price", "", "initial sqrt price X96, decimal")
	cmd.Flags().Uint32Var(&lpFee, "lp-fee", 3000, "initial LP fee in hundredths of a basis point")
	cmd.MarkFlagRequired("sqrt-price")
	return cmd
}

func loadPool() (*snapshot.Store, *poolcore.Pool, error) {
	key, err := poolKey()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	pool, err := store.Load(key)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("loading pool %x: %w", key.ID(), err)
	}
	return store, pool, nil
}

func mintCmd() *cobra.Command {
	var tickLower, tickUpper int32
	var amountDec, ownerHex string
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Add liquidity to a tick range",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, pool, err := loadPool()
			if err != nil {
				return err
			}
			defer store.Close()

			amount, err := uint256.FromDecimal(amountDec)
			if err != nil {
				return fmt.Errorf("parsing --amount: %w", err)
			}
			owner := common.HexToAddress(ownerHex)

			result, err := pool.ModifyLiquidity(poolcore.ModifyLiquidityParams{
				Owner:          [20]byte(owner),
				TickLower:      tickLower,
				TickUpper:      tickUpper,
				LiquidityDelta: poolcore.NewInt128(amount, false),
			})
			if err != nil {
				return err
			}
			if err := store.Save(pool); err != nil {
				return err
			}
			printAmounts("minted", result.Amount0, result.Amount1)
			return nil
		},
	}
	cmd.Flags().Int32Var(&tickLower, "tick-lower", 0, "lower tick boundary")
	cmd.Flags().Int32Var(&tickUpper, "tick-upper", 0, "upper tick boundary")
	cmd.Flags().StringVar(&amountDec, "amount", "", "liquidity amount, decimal")
	cmd.Flags().StringVar(&ownerHex, "owner", "", "position owner address")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("owner")
	return cmd
}

func burnCmd() *cobra.Command {
	var tickLower, tickUpper int32
	var amountDec, ownerHex string
	cmd := &cobra.Command{
		Use:   "burn",
		Short: "Remove liquidity from a tick range",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, pool, err := loadPool()
			if err != nil {
				return err
			}
			defer store.Close()

			amount, err := uint256.FromDecimal(amountDec)
			if err != nil {
				return fmt.Errorf("parsing --amount: %w", err)
			}
			owner := common.HexToAddress(ownerHex)

			result, err := pool.ModifyLiquidity(poolcore.ModifyLiquidityParams{
				Owner:          [20]byte(owner),
				TickLower:      tickLower,
				TickUpper:      tickUpper,
				LiquidityDelta: poolcore.NewInt128(amount, true),
			})
			if err != nil {
				return err
			}
			if err := store.Save(pool); err != nil {
				return err
			}
			printAmounts("burned", result.Amount0, result.Amount1)
			fmt.Printf("fees owed: owed0=%s owed1=%s\n", result.Owed0.Dec(), result.Owed1.Dec())
			return nil
		},
	}
	cmd.Flags().Int32Var(&tickLower, "tick-lower", 0, "lower tick boundary")
	cmd.Flags().Int32Var(&tickUpper, "tick-upper", 0, "upper tick boundary")
	cmd.Flags().StringVar(&amountDec, "amount", "", "liquidity amount, decimal")
	cmd.Flags().StringVar(&ownerHex, "owner", "", "position owner address")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("owner")
	return cmd
}

func swapCmd() *cobra.Command {
	var zeroForOne bool
	var amountDec, priceLimitDec string
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap against the pool's aggregated liquidity",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, pool, err := loadPool()
			if err != nil {
				return err
			}
			defer store.Close()

			amount, err := uint256.FromDecimal(amountDec)
			if err != nil {
				return fmt.Errorf("parsing --amount: %w", err)
			}
			priceLimit, err := uint256.FromDecimal(priceLimitDec)
			if err != nil {
				return fmt.Errorf("parsing --price-limit: %w", err)
			}

			result, err := pool.Swap(poolcore.SwapParams{
				ZeroForOne:        zeroForOne,
				AmountSpecified:   poolcore.NewInt128(amount, false),
				SqrtPriceLimitX96: priceLimit,
			})
			if err != nil {
				return err
			}
			if err := store.Save(pool); err != nil {
				return err
			}
			printAmounts("swapped", result.Amount0, result.Amount1)
			return nil
		},
	}
	cmd.Flags().BoolVar(&zeroForOne, "zero-for-one", true, "swap direction: token0 to token1")
	cmd.Flags().StringVar(&amountDec, "amount", "", "exact-input amount specified, decimal")
	cmd.Flags().StringVar(&priceLimitDec, "price-limit", "", "sqrt price limit X96, decimal")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("price-limit")
	return cmd
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the current pool state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, pool, err := loadPool()
			if err != nil {
				return err
			}
			defer store.Close()

			price := display.Price(pool.SqrtPriceX96(), 0)
			fmt.Printf("tick=%d sqrtPriceX96=%s price=%s liquidity=%s\n",
				pool.Tick(), pool.SqrtPriceX96().Dec(), price.String(), pool.Liquidity().Dec())
			return nil
		},
	}
}

func printAmounts(verb string, amount0, amount1 poolcore.Int128) {
	sign := func(d poolcore.Int128) string {
		if d.Neg {
			return "-"
		}
		return ""
	}
	fmt.Printf("%s: amount0=%s%s amount1=%s%s\n", verb, sign(amount0), amount0.Abs.Dec(), sign(amount1), amount1.Abs.Dec())
}
