// Package view derives the per-pool and per-user display state from chain
// reads and drives the user-intent flows (create, deposit, buy, withdraw).
package view

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolaclient/internal/config"
	"poolaclient/internal/convert"
	"poolaclient/internal/model"
	"poolaclient/internal/txwatch"
	"poolaclient/internal/wallet"
)

// ErrTokenNotWhitelisted is returned when a pool references a token absent
// from the active network's whitelist. Surfaced, never skipped.
var ErrTokenNotWhitelisted = errors.New("view: token not whitelisted")

// DefaultBuyETH is the pre-filled purchase amount.
const DefaultBuyETH = "0.001"

// ExchangeClient is the slice of the exchange contract client the manager
// consumes.
type ExchangeClient interface {
	Address() common.Address
	PoolCount(ctx context.Context) (uint64, error)
	PoolNameAt(ctx context.Context, index uint64) (string, error)
	PoolByName(ctx context.Context, name string) (model.Pool, error)
	AllowanceOf(ctx context.Context, address common.Address) (*big.Int, error)
	CreatePool(ctx context.Context, name string, token common.Address, pricePerWei *big.Int) *txwatch.Handle
	Deposit(ctx context.Context, name string, amount *big.Int) *txwatch.Handle
	Buy(ctx context.Context, name string, amount, weiAmount *big.Int) *txwatch.Handle
	Withdraw(ctx context.Context, amount *big.Int) *txwatch.Handle
}

// TokenApprover issues ERC20 approvals.
type TokenApprover interface {
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) *txwatch.Handle
}

// AccountSource exposes the connected account.
type AccountSource interface {
	CurrentAddress() (common.Address, error)
}

// PoolView is the derived display state for one pool.
type PoolView struct {
	Index        uint64
	Pool         model.Pool
	Token        model.Token
	DisplaySize  *big.Int
	DefaultQuote string
	Loading      bool
}

// ListState is the top-level pool-list state.
type ListState struct {
	PoolCount uint64
	Indices   []uint64
}

// Manager recomputes view state from chain reads and runs the mutating
// flows. Mutations are followed by a full reload, never by patching the
// local copy.
type Manager struct {
	exchange ExchangeClient
	approver TokenApprover
	accounts AccountSource
	network  config.Network
	logger   *zap.Logger

	mu      sync.Mutex
	pending []*model.PendingTransaction
}

func NewManager(exchange ExchangeClient, approver TokenApprover, accounts AccountSource, network config.Network, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		exchange: exchange,
		approver: approver,
		accounts: accounts,
		network:  network,
		logger:   logger,
	}
}

// Load resolves the full view for the pool at a creation-order index: name,
// record, whitelisted token, display size. Loading clears only once every
// dependent fetch completed; any read error fails the whole load.
func (m *Manager) Load(ctx context.Context, index uint64) (PoolView, error) {
	view := PoolView{Index: index, Loading: true}

	name, err := m.exchange.PoolNameAt(ctx, index)
	if err != nil {
		return view, fmt.Errorf("resolve pool name at %d: %w", index, err)
	}

	pool, err := m.exchange.PoolByName(ctx, name)
	if err != nil {
		return view, fmt.Errorf("load pool %q: %w", name, err)
	}

	token, ok := m.network.TokenByAddress(pool.ERC20Address)
	if !ok {
		return view, fmt.Errorf("%w: %s", ErrTokenNotWhitelisted, pool.ERC20Address)
	}

	quote, err := convert.QuoteTokens(DefaultBuyETH, pool.PricePerWei)
	if err != nil {
		return view, fmt.Errorf("quote pool %q: %w", name, err)
	}

	view.Pool = pool
	view.Token = token
	view.DisplaySize = convert.WholeUnits(pool.Size, token.Decimals)
	view.DefaultQuote = quote
	view.Loading = false
	return view, nil
}

// RefreshList re-derives the displayed index range from the pool count.
// Must be re-run after a confirmed createPool.
func (m *Manager) RefreshList(ctx context.Context) (ListState, error) {
	count, err := m.exchange.PoolCount(ctx)
	if err != nil {
		return ListState{}, fmt.Errorf("pool count: %w", err)
	}
	indices := make([]uint64, count)
	for i := range indices {
		indices[i] = uint64(i)
	}
	return ListState{PoolCount: count, Indices: indices}, nil
}

// Quote returns the display-unit token quantity ethAmount buys at the
// view's price.
func (m *Manager) Quote(view PoolView, ethAmount string) (string, error) {
	return convert.QuoteTokens(ethAmount, view.Pool.PricePerWei)
}

// IsOwner reports whether the connected account owns the pool. With no
// account connected no pool is owned; the empty address never matches.
func (m *Manager) IsOwner(view PoolView) bool {
	current, err := m.accounts.CurrentAddress()
	if err != nil {
		return false
	}
	return wallet.SameAddress(current, view.Pool.Owner)
}

// Pending returns a snapshot of the transactions issued by this manager.
func (m *Manager) Pending() []*model.PendingTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.PendingTransaction, len(m.pending))
	copy(out, m.pending)
	return out
}

func (m *Manager) track(kind model.TxKind) *model.PendingTransaction {
	submitter, _ := m.accounts.CurrentAddress()
	tx := &model.PendingTransaction{Kind: kind, SubmittedBy: submitter, Stage: model.StagePending}
	m.mu.Lock()
	m.pending = append(m.pending, tx)
	m.mu.Unlock()
	return tx
}

// settle waits for the handle's terminal stage and records it on the
// pending entry, logging the user-visible notice.
func (m *Manager) settle(ctx context.Context, tx *model.PendingTransaction, h *txwatch.Handle) (txwatch.Result, error) {
	res, err := h.Wait(ctx)
	if err != nil {
		return txwatch.Result{}, err
	}

	m.mu.Lock()
	tx.Hash = res.Hash
	if res.Err != nil {
		tx.Stage = model.StageFailed
	} else {
		tx.Stage = model.StageConfirmed
	}
	m.mu.Unlock()

	if res.Err != nil {
		m.logger.Warn("transaction failed",
			zap.String("kind", string(tx.Kind)),
			zap.Stringer("hash", res.Hash),
			zap.Error(res.Err),
		)
		return res, fmt.Errorf("%s: %w", tx.Kind, res.Err)
	}

	m.logger.Info("transaction confirmed",
		zap.String("kind", string(tx.Kind)),
		zap.Stringer("hash", res.Hash),
		zap.Uint64("confirmations", res.Confirmations),
	)
	return res, nil
}
