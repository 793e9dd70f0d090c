package txwatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"poolaclient/internal/model"
)

var testHash = common.HexToHash("0x1234")

func successReceipt() *types.Receipt {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: testHash}
}

func TestHandleConfirmedOnce(t *testing.T) {
	h := NewHandle()

	confirmed := 0
	failed := 0
	h.OnConfirmed(func(n uint64, r *types.Receipt) {
		confirmed++
		if n != 3 {
			t.Fatalf("confirmations = %d, want 3", n)
		}
		if r == nil {
			t.Fatalf("nil receipt on confirm")
		}
	}).OnError(func(error, *types.Receipt) {
		failed++
	})

	h.Submitted(testHash)
	h.Confirmed(3, successReceipt())
	h.Confirmed(4, successReceipt())
	h.Failed(errors.New("late"), nil)

	if confirmed != 1 {
		t.Fatalf("confirmed fired %d times, want 1", confirmed)
	}
	if failed != 0 {
		t.Fatalf("error callback fired after confirmation")
	}
	if h.Stage() != model.StageConfirmed {
		t.Fatalf("stage = %v, want confirmed", h.Stage())
	}
}

func TestHandleErrorShortCircuitsChain(t *testing.T) {
	h := NewHandle()

	dependentIssued := false
	errFired := 0
	h.OnConfirmed(func(uint64, *types.Receipt) {
		dependentIssued = true
	}).OnError(func(err error, r *types.Receipt) {
		errFired++
	})

	h.Submitted(testHash)
	h.Failed(errors.New("user rejected"), nil)
	h.Confirmed(1, successReceipt())

	if errFired != 1 {
		t.Fatalf("error fired %d times, want 1", errFired)
	}
	if dependentIssued {
		t.Fatalf("dependent call issued after failure")
	}
	if h.Stage() != model.StageFailed {
		t.Fatalf("stage = %v, want failed", h.Stage())
	}
}

func TestHandleStageOrder(t *testing.T) {
	h := NewHandle()

	var order []string
	h.OnSubmitted(func(hash common.Hash) {
		if hash != testHash {
			t.Fatalf("hash mismatch")
		}
		order = append(order, "submitted")
	}).OnReceipt(func(*types.Receipt) {
		order = append(order, "receipt")
	}).OnConfirmed(func(uint64, *types.Receipt) {
		order = append(order, "confirmed")
	})

	// Confirming before a hash exists is out of order and must be ignored.
	h.Confirmed(1, successReceipt())
	if h.Stage() != model.StagePending {
		t.Fatalf("premature confirm changed stage")
	}

	h.Submitted(testHash)
	h.Confirmed(1, successReceipt())

	want := []string{"submitted", "receipt", "confirmed"}
	if len(order) != len(want) {
		t.Fatalf("stage order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("stage order %v, want %v", order, want)
		}
	}
}

func TestHandleWait(t *testing.T) {
	h := NewHandle()
	go func() {
		h.Submitted(testHash)
		h.Confirmed(2, successReceipt())
	}()

	res, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("result err: %v", res.Err)
	}
	if res.Hash != testHash || res.Confirmations != 2 {
		t.Fatalf("result = %+v", res)
	}

	// A second Wait on a terminal handle returns immediately.
	res, err = h.Wait(context.Background())
	if err != nil || res.Confirmations != 2 {
		t.Fatalf("second wait: %+v, %v", res, err)
	}
}

func TestHandleWaitContextCancelled(t *testing.T) {
	h := NewHandle()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := h.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestHandleFailureBeforeSubmission(t *testing.T) {
	h := NewHandle()

	var got error
	h.OnError(func(err error, r *types.Receipt) {
		got = err
		if r != nil {
			t.Fatalf("receipt present for pre-submission failure")
		}
	})

	sendErr := errors.New("insufficient funds")
	h.Failed(sendErr, nil)

	if !errors.Is(got, sendErr) {
		t.Fatalf("error = %v, want %v", got, sendErr)
	}
	if h.Stage() != model.StageFailed {
		t.Fatalf("stage = %v, want failed", h.Stage())
	}
}
