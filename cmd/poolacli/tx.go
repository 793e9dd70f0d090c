package main

import (
	"bufio"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <pool-name> <token> <price-per-wei>",
		Short: "Create a new pool (token by symbol or address)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			token, err := a.resolveToken(args[1])
			if err != nil {
				return err
			}
			price, ok := new(big.Int).SetString(args[2], 10)
			if !ok || price.Sign() <= 0 {
				return fmt.Errorf("invalid price %q: want a positive integer", args[2])
			}

			fmt.Printf("creating pool %q (%s at %s per ETH)...\n", args[0], token.Symbol, price)
			list, err := a.manager.CreatePool(ctx, args[0], token.Address, price)
			if err != nil {
				return err
			}
			fmt.Printf("pool created; %d pool(s) now registered\n", list.PoolCount)
			return nil
		},
	}
}

func newDepositCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <pool-index> <eth-amount>",
		Short: "Deposit tokens into a pool you own (approves first)",
		Args:  cobra.ExactArgs(2),
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
			if !a.manager.IsOwner(poolView) {
				return fmt.Errorf("pool %q is not owned by the connected account", poolView.Pool.Name)
			}

			quote, err := a.manager.Quote(poolView, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("depositing %s %s into %q (approve, then deposit)...\n",
				quote, poolView.Token.Symbol, poolView.Pool.Name)

			refreshed, err := a.manager.Deposit(ctx, poolView, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("deposit confirmed; pool size now %s %s\n",
				refreshed.DisplaySize, refreshed.Token.Symbol)
			return nil
		},
	}
}

func newBuyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <pool-index> <eth-amount>",
		Short: "Buy tokens from a pool, paying ETH",
		Args:  cobra.ExactArgs(2),
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

			quote, err := a.manager.Quote(poolView, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("buying %s %s from %q for %s ETH...\n",
				quote, poolView.Token.Symbol, poolView.Pool.Name, args[1])

			refreshed, err := a.manager.Buy(ctx, poolView, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("buy confirmed; pool size now %s %s\n",
				refreshed.DisplaySize, refreshed.Token.Symbol)
			return nil
		},
	}
}

func newWithdrawCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw the ETH accrued from sales",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			assumeYes, _ := cmd.Flags().GetBool("yes")

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

			if !assumeYes {
				fmt.Printf("withdraw %s ETH? [y/N] ", prompt.DisplayETH)
				reader := bufio.NewReader(os.Stdin)
				answer, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					fmt.Println("cancelled")
					return nil
				}
			}

			if err := a.manager.Withdraw(ctx, prompt.AmountWei); err != nil {
				return err
			}
			fmt.Printf("successfully withdrew %s ETH\n", prompt.DisplayETH)
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	return cmd
}
