package model

import "github.com/ethereum/go-ethereum/common"

// Token describes a whitelisted ERC20 token usable in pools.
type Token struct {
	Address  common.Address
	Symbol   string
	Name     string
	Decimals uint8
}
