package view

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolaclient/internal/convert"
	"poolaclient/internal/model"
)

// CreatePool registers a new pool with a whitelisted token and returns the
// refreshed list state once the creation confirmed.
func (m *Manager) CreatePool(ctx context.Context, name string, token common.Address, pricePerWei *big.Int) (ListState, error) {
	if _, ok := m.network.TokenByAddress(token); !ok {
		return ListState{}, fmt.Errorf("%w: %s", ErrTokenNotWhitelisted, token)
	}

	tx := m.track(model.TxCreatePool)
	h := m.exchange.CreatePool(ctx, name, token, pricePerWei)
	if _, err := m.settle(ctx, tx, h); err != nil {
		return ListState{}, err
	}

	return m.RefreshList(ctx)
}

// Deposit adds ethAmount worth of tokens (at the pool's price) to a pool the
// caller owns. The token approval must confirm before the deposit is issued;
// an approval failure aborts the flow and the deposit is never submitted.
func (m *Manager) Deposit(ctx context.Context, view PoolView, ethAmount string) (PoolView, error) {
	amount, err := convert.TokenAmount(ethAmount, view.Pool.PricePerWei, view.Token.Decimals)
	if err != nil {
		return view, fmt.Errorf("deposit amount: %w", err)
	}

	approveTx := m.track(model.TxApprove)
	depositTx := &model.PendingTransaction{Kind: model.TxDeposit, SubmittedBy: approveTx.SubmittedBy}
	approveTx.Dependent = depositTx

	approveHandle := m.approver.Approve(ctx, view.Pool.ERC20Address, m.exchange.Address(), amount)
	if _, err := m.settle(ctx, approveTx, approveHandle); err != nil {
		// Approval did not confirm: the dependent deposit must not run.
		return view, err
	}

	m.mu.Lock()
	m.pending = append(m.pending, depositTx)
	m.mu.Unlock()

	depositHandle := m.exchange.Deposit(ctx, view.Pool.Name, amount)
	if _, err := m.settle(ctx, depositTx, depositHandle); err != nil {
		return view, err
	}

	return m.Load(ctx, view.Index)
}

// Buy purchases ethAmount worth of tokens from the pool, attaching the wei
// payment to the call. The token amount uses the price captured when the
// view was loaded; the contract validates payment against its current price.
func (m *Manager) Buy(ctx context.Context, view PoolView, ethAmount string) (PoolView, error) {
	amount, err := convert.TokenAmount(ethAmount, view.Pool.PricePerWei, view.Token.Decimals)
	if err != nil {
		return view, fmt.Errorf("buy amount: %w", err)
	}
	weiAmount, err := convert.WeiAmount(ethAmount)
	if err != nil {
		return view, fmt.Errorf("buy payment: %w", err)
	}

	tx := m.track(model.TxBuy)
	h := m.exchange.Buy(ctx, view.Pool.Name, amount, weiAmount)
	if _, err := m.settle(ctx, tx, h); err != nil {
		return view, err
	}

	return m.Load(ctx, view.Index)
}

// WithdrawPrompt is the resolved second phase of the withdraw flow: either
// there is nothing to withdraw (terminal, no action offered) or an exact
// amount awaiting explicit confirmation.
type WithdrawPrompt struct {
	Nothing    bool
	AmountWei  *big.Int
	DisplayETH string
}

// AllowancePrompt queries the caller's accrued allowance. The caller shows
// an indeterminate affordance while this runs; the result either suppresses
// the prompt (zero) or carries the exact amount to confirm.
func (m *Manager) AllowancePrompt(ctx context.Context) (WithdrawPrompt, error) {
	current, err := m.accounts.CurrentAddress()
	if err != nil {
		return WithdrawPrompt{}, err
	}

	allowance, err := m.exchange.AllowanceOf(ctx, current)
	if err != nil {
		return WithdrawPrompt{}, fmt.Errorf("query allowance: %w", err)
	}

	if allowance.Sign() == 0 {
		return WithdrawPrompt{Nothing: true, AmountWei: allowance}, nil
	}
	return WithdrawPrompt{
		AmountWei:  allowance,
		DisplayETH: convert.FormatUnits(allowance, convert.WeiDecimals),
	}, nil
}

// Withdraw pays out exactly the prompted wei amount.
func (m *Manager) Withdraw(ctx context.Context, amountWei *big.Int) error {
	tx := m.track(model.TxWithdraw)
	h := m.exchange.Withdraw(ctx, amountWei)
	_, err := m.settle(ctx, tx, h)
	return err
}
