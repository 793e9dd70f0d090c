// Package txwatch tracks the lifecycle of submitted transactions: a hash is
// assigned, then the transaction either confirms or fails. Each mutating
// contract call returns a Handle.
package txwatch

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"poolaclient/internal/model"
)

// ErrExecutionReverted marks a mined transaction whose receipt status is 0.
var ErrExecutionReverted = errors.New("txwatch: execution reverted")

// Result is the terminal outcome of a tracked transaction.
type Result struct {
	Hash          common.Hash
	Confirmations uint64
	Receipt       *types.Receipt
	Err           error
}

// Handle exposes the four lifecycle stages of one transaction. At most one
// callback can be registered per stage and each fires at most once, in the
// order submitted -> (receipt, confirmed) | error. Registering after a stage
// has fired does not replay it: register before issuing the call.
//
// Dependent calls must not be chained from the submitted stage; await the
// confirmed stage (or Wait) so the dependency is mined first.
type Handle struct {
	mu     sync.Mutex
	stage  model.TxStage
	result Result
	done   chan struct{}

	onSubmitted func(common.Hash)
	onConfirmed func(uint64, *types.Receipt)
	onReceipt   func(*types.Receipt)
	onError     func(error, *types.Receipt)
}

func NewHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// OnSubmitted registers the hash-assigned callback.
func (h *Handle) OnSubmitted(fn func(common.Hash)) *Handle {
	h.mu.Lock()
	h.onSubmitted = fn
	h.mu.Unlock()
	return h
}

// OnConfirmed registers the confirmation callback.
func (h *Handle) OnConfirmed(fn func(uint64, *types.Receipt)) *Handle {
	h.mu.Lock()
	h.onConfirmed = fn
	h.mu.Unlock()
	return h
}

// OnReceipt registers the receipt callback, fired just before confirmation.
func (h *Handle) OnReceipt(fn func(*types.Receipt)) *Handle {
	h.mu.Lock()
	h.onReceipt = fn
	h.mu.Unlock()
	return h
}

// OnError registers the failure callback. The receipt is non-nil only when
// the transaction was mined and reverted.
func (h *Handle) OnError(fn func(error, *types.Receipt)) *Handle {
	h.mu.Lock()
	h.onError = fn
	h.mu.Unlock()
	return h
}

// Stage returns the current lifecycle stage.
func (h *Handle) Stage() model.TxStage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stage
}

// Submitted transitions pending -> broadcast and fires the hash callback.
func (h *Handle) Submitted(hash common.Hash) {
	h.mu.Lock()
	if h.stage != model.StagePending {
		h.mu.Unlock()
		return
	}
	h.stage = model.StageBroadcast
	h.result.Hash = hash
	fn := h.onSubmitted
	h.mu.Unlock()

	if fn != nil {
		fn(hash)
	}
}

// Confirmed transitions broadcast -> confirmed and fires the receipt and
// confirmation callbacks. Ignored unless the hash stage already fired.
func (h *Handle) Confirmed(confirmations uint64, receipt *types.Receipt) {
	h.mu.Lock()
	if h.stage != model.StageBroadcast {
		h.mu.Unlock()
		return
	}
	h.stage = model.StageConfirmed
	h.result.Confirmations = confirmations
	h.result.Receipt = receipt
	receiptFn := h.onReceipt
	confirmedFn := h.onConfirmed
	h.mu.Unlock()

	if receiptFn != nil {
		receiptFn(receipt)
	}
	if confirmedFn != nil {
		confirmedFn(confirmations, receipt)
	}
	close(h.done)
}

// Failed transitions to the terminal failed stage and fires the error
// callback. Valid from any non-terminal stage: submission itself can fail
// before a hash exists.
func (h *Handle) Failed(err error, receipt *types.Receipt) {
	h.mu.Lock()
	if h.stage.Terminal() {
		h.mu.Unlock()
		return
	}
	h.stage = model.StageFailed
	h.result.Err = err
	h.result.Receipt = receipt
	fn := h.onError
	h.mu.Unlock()

	if fn != nil {
		fn(err, receipt)
	}
	close(h.done)
}

// Wait blocks until the transaction reaches a terminal stage and returns its
// result. Cancelling the context stops waiting, not the transaction: once
// submitted, the call runs to confirmed or failed on-chain regardless.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-h.done:
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, nil
}
