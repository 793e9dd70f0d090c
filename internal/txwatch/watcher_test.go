package txwatch

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"poolaclient/internal/model"
)

type stubSource struct {
	mu            sync.Mutex
	receipts      map[common.Hash]*types.Receipt
	head          uint64
	failuresLeft  int
	receiptDelays int
}

func (s *stubSource) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failuresLeft > 0 {
		s.failuresLeft--
		return nil, errors.New("transient rpc failure")
	}
	if s.receiptDelays > 0 {
		s.receiptDelays--
		return nil, ethereum.NotFound
	}
	r, ok := s.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (s *stubSource) BlockNumber(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.head++
	return s.head, nil
}

func fastConfig() Config {
	return Config{
		PollInterval:  time.Millisecond,
		Confirmations: 1,
		MaxRetries:    3,
		RetryBackoff:  time.Millisecond,
	}
}

func minedReceipt(hash common.Hash, status uint64, block int64) *types.Receipt {
	return &types.Receipt{Status: status, TxHash: hash, BlockNumber: big.NewInt(block)}
}

func TestWatcherConfirms(t *testing.T) {
	hash := common.HexToHash("0xabc")
	source := &stubSource{
		receipts: map[common.Hash]*types.Receipt{
			hash: minedReceipt(hash, types.ReceiptStatusSuccessful, 5),
		},
		head:          10,
		receiptDelays: 2,
	}
	w := NewWatcher(source, fastConfig(), nil)

	h := w.Submit(context.Background(), model.TxDeposit, func(context.Context) (common.Hash, error) {
		return hash, nil
	})

	res, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("result err: %v", res.Err)
	}
	if res.Hash != hash {
		t.Fatalf("hash = %s, want %s", res.Hash, hash)
	}
	if res.Receipt == nil || res.Receipt.Status != types.ReceiptStatusSuccessful {
		t.Fatalf("receipt = %+v", res.Receipt)
	}
	if res.Confirmations == 0 {
		t.Fatalf("no confirmations reported")
	}
}

func TestWatcherReverted(t *testing.T) {
	hash := common.HexToHash("0xdef")
	source := &stubSource{
		receipts: map[common.Hash]*types.Receipt{
			hash: minedReceipt(hash, types.ReceiptStatusFailed, 5),
		},
		head: 10,
	}
	w := NewWatcher(source, fastConfig(), nil)

	h := w.Submit(context.Background(), model.TxBuy, func(context.Context) (common.Hash, error) {
		return hash, nil
	})

	res, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !errors.Is(res.Err, ErrExecutionReverted) {
		t.Fatalf("result err = %v, want revert", res.Err)
	}
	if res.Receipt == nil {
		t.Fatalf("reverted result must carry the receipt")
	}
	if h.Stage() != model.StageFailed {
		t.Fatalf("stage = %v, want failed", h.Stage())
	}
}

func TestWatcherSubmitFailure(t *testing.T) {
	source := &stubSource{head: 1}
	w := NewWatcher(source, fastConfig(), nil)

	sendErr := errors.New("user rejected signing")
	h := w.Submit(context.Background(), model.TxWithdraw, func(context.Context) (common.Hash, error) {
		return common.Hash{}, sendErr
	})

	res, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !errors.Is(res.Err, sendErr) {
		t.Fatalf("result err = %v, want %v", res.Err, sendErr)
	}
	if res.Receipt != nil {
		t.Fatalf("unexpected receipt on submit failure")
	}
}

func TestWatcherRetriesTransientErrors(t *testing.T) {
	hash := common.HexToHash("0x777")
	source := &stubSource{
		receipts: map[common.Hash]*types.Receipt{
			hash: minedReceipt(hash, types.ReceiptStatusSuccessful, 5),
		},
		head:         10,
		failuresLeft: 2,
	}
	w := NewWatcher(source, fastConfig(), nil)

	h := w.Submit(context.Background(), model.TxCreatePool, func(context.Context) (common.Hash, error) {
		return hash, nil
	})

	res, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("transient errors should be retried, got %v", res.Err)
	}
}

func TestWatcherConfirmationDepth(t *testing.T) {
	hash := common.HexToHash("0x888")
	cfg := fastConfig()
	cfg.Confirmations = 3
	source := &stubSource{
		receipts: map[common.Hash]*types.Receipt{
			hash: minedReceipt(hash, types.ReceiptStatusSuccessful, 5),
		},
		head: 4, // advances by one per BlockNumber call
	}
	w := NewWatcher(source, cfg, nil)

	h := w.Submit(context.Background(), model.TxApprove, func(context.Context) (common.Hash, error) {
		return hash, nil
	})

	res, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("result err: %v", res.Err)
	}
	if res.Confirmations < 3 {
		t.Fatalf("confirmations = %d, want >= 3", res.Confirmations)
	}
}
