package txwatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"poolaclient/internal/model"
)

// ReceiptSource provides the chain reads the watcher needs.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Config controls receipt polling. Confirmations is the depth at which a
// mined transaction counts as confirmed.
type Config struct {
	PollInterval  time.Duration
	Confirmations uint64
	MaxRetries    int
	RetryBackoff  time.Duration
}

// Watcher drives Handles through their lifecycle by polling for receipts.
// A transaction with no receipt stays pending indefinitely; there is no
// client-side timeout and a submitted transaction is never resubmitted.
type Watcher struct {
	source ReceiptSource
	cfg    Config
	logger *zap.Logger
}

func NewWatcher(source ReceiptSource, cfg Config, logger *zap.Logger) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Confirmations == 0 {
		cfg.Confirmations = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{source: source, cfg: cfg, logger: logger}
}

// Submit issues the transaction through send and returns its handle.
// Submission errors surface through the handle's error stage, never
// synchronously.
func (w *Watcher) Submit(ctx context.Context, kind model.TxKind, send func(context.Context) (common.Hash, error)) *Handle {
	h := NewHandle()
	go func() {
		hash, err := send(ctx)
		if err != nil {
			h.Failed(fmt.Errorf("submit %s: %w", kind, err), nil)
			return
		}
		h.Submitted(hash)
		w.watch(ctx, kind, hash, h)
	}()
	return h
}

func (w *Watcher) watch(ctx context.Context, kind model.TxKind, hash common.Hash, h *Handle) {
	receipt, err := w.awaitReceipt(ctx, hash)
	if err != nil {
		if ctx.Err() != nil {
			// Stopped listening; the transaction itself runs on.
			w.logger.Debug("receipt watch cancelled",
				zap.String("kind", string(kind)), zap.Stringer("hash", hash))
			return
		}
		h.Failed(fmt.Errorf("await receipt for %s: %w", kind, err), nil)
		return
	}

	if receipt.Status == types.ReceiptStatusFailed {
		w.logger.Warn("transaction reverted",
			zap.String("kind", string(kind)), zap.Stringer("hash", hash))
		h.Failed(ErrExecutionReverted, receipt)
		return
	}

	confirmations, err := w.awaitConfirmations(ctx, receipt)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		h.Failed(fmt.Errorf("await confirmations for %s: %w", kind, err), receipt)
		return
	}

	h.Confirmed(confirmations, receipt)
}

func (w *Watcher) awaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	for {
		var receipt *types.Receipt
		err := withRetry(ctx, w.cfg.MaxRetries, w.cfg.RetryBackoff, func(ctx context.Context) error {
			r, err := w.source.TransactionReceipt(ctx, hash)
			if errors.Is(err, ethereum.NotFound) {
				// Still pending, not a failure.
				receipt = nil
				return nil
			}
			if err != nil {
				return err
			}
			receipt = r
			return nil
		})
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}

		if err := sleep(ctx, w.cfg.PollInterval); err != nil {
			return nil, err
		}
	}
}

func (w *Watcher) awaitConfirmations(ctx context.Context, receipt *types.Receipt) (uint64, error) {
	mined := receipt.BlockNumber.Uint64()
	target := mined + w.cfg.Confirmations - 1

	for {
		var head uint64
		err := withRetry(ctx, w.cfg.MaxRetries, w.cfg.RetryBackoff, func(ctx context.Context) error {
			h, err := w.source.BlockNumber(ctx)
			if err != nil {
				return err
			}
			head = h
			return nil
		})
		if err != nil {
			return 0, err
		}
		if head >= target {
			return head - mined + 1, nil
		}

		if err := sleep(ctx, w.cfg.PollInterval); err != nil {
			return 0, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
}
