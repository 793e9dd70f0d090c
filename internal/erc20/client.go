// Package erc20 issues approve calls against fungible-token contracts.
package erc20

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolaclient/internal/model"
	"poolaclient/internal/txwatch"
	"poolaclient/internal/wallet"
)

const erc20ABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "spender", "type": "address"}, {"internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "approve", "outputs": [{"internalType": "bool", "name": "", "type": "bool"}], "stateMutability": "nonpayable", "type": "function"}
]`

var (
	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
	erc20ABIErr  error
)

func erc20ABIInstance() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(erc20ABIJSON))
	})
	return erc20ABI, erc20ABIErr
}

// Client issues calls against one token contract.
type Client struct {
	token    common.Address
	provider wallet.Provider
	watcher  *txwatch.Watcher
	logger   *zap.Logger
}

// Approve grants spender rights to move up to amount of the caller's tokens
// and returns the lifecycle handle for the call.
func (c *Client) Approve(ctx context.Context, spender common.Address, amount *big.Int) *txwatch.Handle {
	return c.watcher.Submit(ctx, model.TxApprove, func(ctx context.Context) (common.Hash, error) {
		parsed, err := erc20ABIInstance()
		if err != nil {
			return common.Hash{}, fmt.Errorf("parse erc20 abi: %w", err)
		}
		data, err := parsed.Pack("approve", spender, amount)
		if err != nil {
			return common.Hash{}, fmt.Errorf("pack approve: %w", err)
		}
		from, err := c.provider.CurrentAddress()
		if err != nil {
			return common.Hash{}, err
		}

		hash, err := c.provider.SendTransaction(ctx, wallet.TxRequest{
			From: from,
			To:   c.token,
			Data: data,
		})
		if err != nil {
			return common.Hash{}, err
		}

		c.logger.Info("approve submitted",
			zap.Stringer("token", c.token),
			zap.Stringer("spender", spender),
			zap.String("amount", amount.String()),
			zap.Stringer("hash", hash),
		)
		return hash, nil
	})
}

// Registry hands out one Client per token address. Get with the same
// address always returns the same instance.
type Registry struct {
	provider wallet.Provider
	watcher  *txwatch.Watcher
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[common.Address]*Client
}

func NewRegistry(provider wallet.Provider, watcher *txwatch.Watcher, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		provider: provider,
		watcher:  watcher,
		logger:   logger,
		clients:  make(map[common.Address]*Client),
	}
}

func (r *Registry) Get(token common.Address) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[token]; ok {
		return c
	}
	c := &Client{
		token:    token,
		provider: r.provider,
		watcher:  r.watcher,
		logger:   r.logger,
	}
	r.clients[token] = c
	return c
}

// Approve resolves the token's client and issues the approval through it.
func (r *Registry) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) *txwatch.Handle {
	return r.Get(token).Approve(ctx, spender, amount)
}
