// Package exchange is the typed client for the Poola pool-exchange contract.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolaclient/internal/model"
	"poolaclient/internal/txwatch"
	"poolaclient/internal/wallet"
)

// ErrPoolNotFound is returned when a pool name has never been registered.
var ErrPoolNotFound = errors.New("exchange: pool not found")

// Client is bound to one deployed exchange contract.
type Client struct {
	address  common.Address
	provider wallet.Provider
	watcher  *txwatch.Watcher
	logger   *zap.Logger
}

func NewClient(address common.Address, provider wallet.Provider, watcher *txwatch.Watcher, logger *zap.Logger) (*Client, error) {
	if _, err := PoolaABI(); err != nil {
		return nil, fmt.Errorf("parse exchange abi: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{address: address, provider: provider, watcher: watcher, logger: logger}, nil
}

// Address returns the exchange contract address (the approve spender for
// deposits).
func (c *Client) Address() common.Address {
	return c.address
}

func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	parsed, err := PoolaABI()
	if err != nil {
		return nil, fmt.Errorf("parse exchange abi: %w", err)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &c.address, Data: data}
	resp, err := c.provider.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// PoolCount returns the number of pools ever created.
func (c *Client) PoolCount(ctx context.Context) (uint64, error) {
	values, err := c.call(ctx, "getPoolsCount")
	if err != nil {
		return 0, err
	}
	count, err := asBigInt(values[0])
	if err != nil {
		return 0, fmt.Errorf("pool count: %w", err)
	}
	return count.Uint64(), nil
}

// PoolNameAt returns the pool name at a creation-order index. The contract
// rejects out-of-range indices.
func (c *Client) PoolNameAt(ctx context.Context, index uint64) (string, error) {
	values, err := c.call(ctx, "poolNames", new(big.Int).SetUint64(index))
	if err != nil {
		return "", err
	}
	name, err := asString(values[0])
	if err != nil {
		return "", fmt.Errorf("pool name at %d: %w", index, err)
	}
	return name, nil
}

// PoolByName fetches the full pool record, or ErrPoolNotFound. A Solidity
// mapping returns the zero struct for unknown keys, so absence shows up as a
// zero owner.
func (c *Client) PoolByName(ctx context.Context, name string) (model.Pool, error) {
	values, err := c.call(ctx, "pools", name)
	if err != nil {
		return model.Pool{}, err
	}
	if len(values) != 5 {
		return model.Pool{}, fmt.Errorf("pools returned %d values", len(values))
	}

	owner, err := asAddress(values[1])
	if err != nil {
		return model.Pool{}, fmt.Errorf("pool owner: %w", err)
	}
	if (owner == common.Address{}) {
		return model.Pool{}, fmt.Errorf("%w: %q", ErrPoolNotFound, name)
	}

	erc20Address, err := asAddress(values[2])
	if err != nil {
		return model.Pool{}, fmt.Errorf("pool token: %w", err)
	}
	price, err := asBigInt(values[3])
	if err != nil {
		return model.Pool{}, fmt.Errorf("pool price: %w", err)
	}
	size, err := asBigInt(values[4])
	if err != nil {
		return model.Pool{}, fmt.Errorf("pool size: %w", err)
	}

	return model.Pool{
		Name:         name,
		Owner:        owner,
		ERC20Address: erc20Address,
		PricePerWei:  price,
		Size:         size,
	}, nil
}

// AllowanceOf returns the withdrawable wei balance accrued to an address
// from sales, zero if none.
func (c *Client) AllowanceOf(ctx context.Context, address common.Address) (*big.Int, error) {
	values, err := c.call(ctx, "allowances", address)
	if err != nil {
		return nil, err
	}
	allowance, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("allowance: %w", err)
	}
	return allowance, nil
}

func (c *Client) send(ctx context.Context, kind model.TxKind, value *big.Int, method string, args ...interface{}) *txwatch.Handle {
	return c.watcher.Submit(ctx, kind, func(ctx context.Context) (common.Hash, error) {
		parsed, err := PoolaABI()
		if err != nil {
			return common.Hash{}, fmt.Errorf("parse exchange abi: %w", err)
		}
		data, err := parsed.Pack(method, args...)
		if err != nil {
			return common.Hash{}, fmt.Errorf("pack %s: %w", method, err)
		}
		from, err := c.provider.CurrentAddress()
		if err != nil {
			return common.Hash{}, err
		}

		hash, err := c.provider.SendTransaction(ctx, wallet.TxRequest{
			From:  from,
			To:    c.address,
			Value: value,
			Data:  data,
		})
		if err != nil {
			return common.Hash{}, err
		}

		c.logger.Info("transaction submitted",
			zap.String("kind", string(kind)),
			zap.Stringer("hash", hash),
		)
		return hash, nil
	})
}

// CreatePool registers a new pool. The contract rejects names already taken.
func (c *Client) CreatePool(ctx context.Context, name string, token common.Address, pricePerWei *big.Int) *txwatch.Handle {
	return c.send(ctx, model.TxCreatePool, nil, "createPool", name, token, pricePerWei)
}

// Deposit adds tokens to a pool the caller owns. The pool's token must be
// approved for the exchange address first.
func (c *Client) Deposit(ctx context.Context, name string, amount *big.Int) *txwatch.Handle {
	return c.send(ctx, model.TxDeposit, nil, "deposit", name, amount)
}

// Buy purchases amount token units from the pool, paying weiAmount with the
// call. The contract validates the payment against the pool price.
func (c *Client) Buy(ctx context.Context, name string, amount, weiAmount *big.Int) *txwatch.Handle {
	return c.send(ctx, model.TxBuy, weiAmount, "buyFromPool", name, amount)
}

// Withdraw pays out accrued allowance to the caller.
func (c *Client) Withdraw(ctx context.Context, amount *big.Int) *txwatch.Handle {
	return c.send(ctx, model.TxWithdraw, nil, "withdraw", amount)
}
