package model

import "github.com/ethereum/go-ethereum/common"

// TxKind identifies which mutating contract call a transaction performs.
type TxKind string

const (
	TxCreatePool TxKind = "create"
	TxDeposit    TxKind = "deposit"
	TxBuy        TxKind = "buy"
	TxWithdraw   TxKind = "withdraw"
	TxApprove    TxKind = "approve"
)

// TxStage is the lifecycle stage of a submitted transaction. A transaction
// moves Pending -> Broadcast -> Confirmed or Failed; Confirmed and Failed
// are terminal.
type TxStage int

const (
	StagePending TxStage = iota
	StageBroadcast
	StageConfirmed
	StageFailed
)

func (s TxStage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageBroadcast:
		return "broadcast"
	case StageConfirmed:
		return "confirmed"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further stage transitions are possible.
func (s TxStage) Terminal() bool {
	return s == StageConfirmed || s == StageFailed
}

// PendingTransaction records an in-flight mutating call. Dependent links the
// call that may only be issued once this one confirms (approve -> deposit).
type PendingTransaction struct {
	Kind        TxKind
	SubmittedBy common.Address
	Hash        common.Hash
	Stage       TxStage
	Dependent   *PendingTransaction
}
