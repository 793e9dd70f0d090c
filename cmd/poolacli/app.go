package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolaclient/internal/config"
	"poolaclient/internal/erc20"
	"poolaclient/internal/exchange"
	"poolaclient/internal/model"
	"poolaclient/internal/txwatch"
	"poolaclient/internal/view"
	"poolaclient/internal/wallet"
)

// app is the composition root: it owns the connection registry and wires
// the clients and the view manager together.
type app struct {
	cfg      config.Config
	network  config.Network
	logger   *zap.Logger
	registry *wallet.Registry
	provider wallet.Provider
	exchange *exchange.Client
	manager  *view.Manager
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	network, err := cfg.ActiveNetwork()
	if err != nil {
		return nil, err
	}

	registry := wallet.NewRegistry(cfg.RPCURL)
	provider, err := registry.Provider(ctx)
	if err != nil {
		return nil, err
	}

	watcher := txwatch.NewWatcher(provider, txwatch.Config{
		PollInterval:  cfg.PollInterval,
		Confirmations: cfg.Confirmations,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
	}, logger)

	exchangeClient, err := exchange.NewClient(network.PoolaAddress, provider, watcher, logger)
	if err != nil {
		return nil, err
	}

	tokens := erc20.NewRegistry(provider, watcher, logger)
	manager := view.NewManager(exchangeClient, tokens, provider, network, logger)

	return &app{
		cfg:      cfg,
		network:  network,
		logger:   logger,
		registry: registry,
		provider: provider,
		exchange: exchangeClient,
		manager:  manager,
	}, nil
}

func (a *app) close() {
	a.logger.Sync()
	a.registry.Close()
}

// resolveToken accepts a whitelisted token's symbol or address.
func (a *app) resolveToken(arg string) (model.Token, error) {
	if common.IsHexAddress(arg) {
		token, ok := a.network.TokenByAddress(common.HexToAddress(arg))
		if !ok {
			return model.Token{}, fmt.Errorf("token %s is not whitelisted on %q", arg, a.cfg.Network)
		}
		return token, nil
	}
	for _, token := range a.network.Tokens {
		if strings.EqualFold(token.Symbol, arg) {
			return token, nil
		}
	}
	return model.Token{}, fmt.Errorf("unknown token %q on network %q", arg, a.cfg.Network)
}
