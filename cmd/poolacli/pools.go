package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"poolaclient/internal/view"
)

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newPoolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List all pools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			list, err := a.manager.RefreshList(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d pool(s) on %q\n", list.PoolCount, a.cfg.Network)

			for _, index := range list.Indices {
				poolView, err := a.manager.Load(ctx, index)
				if err != nil {
					return err
				}
				printPool(a, poolView)
			}
			return nil
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <pool-index>",
		Short: "Show one pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			index, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid pool index %q", args[0])
			}

			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			poolView, err := a.manager.Load(ctx, index)
			if err != nil {
				return err
			}
			printPool(a, poolView)
			return nil
		},
	}
}

func newAllowanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "allowance",
		Short: "Show the withdrawable ETH accrued from sales",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Println("querying allowance...")
			prompt, err := a.manager.AllowancePrompt(ctx)
			if err != nil {
				return err
			}
			if prompt.Nothing {
				fmt.Println("no allowance to withdraw")
				return nil
			}
			fmt.Printf("withdrawable: %s ETH (%s wei)\n", prompt.DisplayETH, prompt.AmountWei)
			return nil
		},
	}
}

func printPool(a *app, poolView view.PoolView) {
	owner := ""
	if a.manager.IsOwner(poolView) {
		owner = " (yours)"
	}
	fmt.Printf("[%d] %s%s\n", poolView.Index, poolView.Pool.Name, owner)
	fmt.Printf("    1 ETH = %s %s, pool size %s %s\n",
		poolView.Pool.PricePerWei, poolView.Token.Symbol,
		poolView.DisplaySize, poolView.Token.Symbol)
	fmt.Printf("    owner %s, token %s, default buy %s ETH = %s %s\n",
		poolView.Pool.Owner, poolView.Token.Address,
		view.DefaultBuyETH, poolView.DefaultQuote, poolView.Token.Symbol)
}
