package exchange

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// The deployed Poola contract interface. Method names and signatures are
// fixed by the deployment and must match exactly.
const poolaABIJSON = `[
  {
    "inputs": [
      {"internalType": "string", "name": "poolName", "type": "string"},
      {"internalType": "address", "name": "erc20Address", "type": "address"},
      {"internalType": "uint256", "name": "pricePerWei", "type": "uint256"}
    ],
    "name": "createPool",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "poolName", "type": "string"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "deposit",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "poolName", "type": "string"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "buyFromPool",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "amount", "type": "uint256"}],
    "name": "withdraw",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getPoolsCount",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "name": "poolNames",
    "outputs": [{"internalType": "string", "name": "", "type": "string"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "string", "name": "", "type": "string"}],
    "name": "pools",
    "outputs": [
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "address", "name": "owner", "type": "address"},
      {"internalType": "address", "name": "erc20Address", "type": "address"},
      {"internalType": "uint256", "name": "pricePerWei", "type": "uint256"},
      {"internalType": "uint256", "name": "size", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "", "type": "address"}],
    "name": "allowances",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	poolaABI     abi.ABI
	poolaABIOnce sync.Once
	poolaABIErr  error
)

// PoolaABI returns the parsed exchange contract ABI.
func PoolaABI() (abi.ABI, error) {
	poolaABIOnce.Do(func() {
		poolaABI, poolaABIErr = abi.JSON(strings.NewReader(poolaABIJSON))
	})
	return poolaABI, poolaABIErr
}
