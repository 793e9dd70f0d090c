// Package wallet holds the connection to the user's wallet/node provider.
// The provider signs transactions; this client never touches keys.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNoAccount is returned when the provider exposes no unlocked account.
// An empty account is never a valid sender and must not compare equal to
// any pool owner.
var ErrNoAccount = errors.New("wallet: no account available")

// TxRequest describes a mutating call for the provider to sign and submit.
type TxRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
}

// Provider is the boundary to the wallet/node. Reads and writes both go
// through it; the concrete implementation delegates signing to the node.
type Provider interface {
	CurrentAddress() (common.Address, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// SameAddress compares two addresses for ownership checks. Hex inputs are
// normalized through common.Address, so the comparison is case-insensitive.
func SameAddress(a, b common.Address) bool {
	return a == b
}
