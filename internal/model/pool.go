package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pool is an on-chain exchange pool: one ERC20 token priced in wei.
// PricePerWei is how many token decimal units 1 ETH buys; Size is the
// pool's token balance in the token's smallest unit.
type Pool struct {
	Name         string
	Owner        common.Address
	ERC20Address common.Address
	PricePerWei  *big.Int
	Size         *big.Int
}
