package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poolacli",
		Short:        "Poola exchange client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("network", "", "network name from the address table")
	root.PersistentFlags().String("rpc", "", "provider RPC URL (node signs transactions)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Uint64("confirmations", 1, "confirmation depth for mutating calls")
	root.PersistentFlags().Duration("poll-interval", 2*time.Second, "receipt polling interval")
	root.PersistentFlags().Int("max-retries", 5, "maximum retry attempts for chain reads")
	root.PersistentFlags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")

	root.AddCommand(newPoolsCommand())
	root.AddCommand(newShowCommand())
	root.AddCommand(newAllowanceCommand())
	root.AddCommand(newCreateCommand())
	root.AddCommand(newDepositCommand())
	root.AddCommand(newBuyCommand())
	root.AddCommand(newWithdrawCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
