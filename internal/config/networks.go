package config

import (
	"github.com/ethereum/go-ethereum/common"

	"poolaclient/internal/model"
)

// DefaultNetworks returns the built-in address tables for the known
// deployments. A config file may add networks or override these entries.
func DefaultNetworks() map[string]Network {
	return map[string]Network{
		"ropsten": {
			PoolaAddress: common.HexToAddress("0x22137554767684F24004579D89ACB8c2E6528A32"),
			Tokens: []model.Token{
				{
					Address:  common.HexToAddress("0xbB34a7E2A070eC193cDdA2df52c2a912f54Ee087"),
					Name:     "PerfectCoin",
					Symbol:   "PFC",
					Decimals: 18,
				},
				{
					Address:  common.HexToAddress("0x5782033F831C661D49cc288e9DFFf02452c93c6F"),
					Name:     "WorthlessCoin",
					Symbol:   "WTL",
					Decimals: 18,
				},
				{
					Address:  common.HexToAddress("0x281b1FE6C3f29c729bA7D7a6fcee7a9A043Fe118"),
					Name:     "DummyCoin",
					Symbol:   "DMM",
					Decimals: 18,
				},
			},
		},
		"localhost": {
			PoolaAddress: common.HexToAddress("0x19782Db8E6a923aDD597CD4f9bA719d48a018F42"),
			Tokens: []model.Token{
				{
					Address:  common.HexToAddress("0x7bf0FfAA412c3871c3545C3C3d174b594c221eAc"),
					Name:     "PerfectCoin",
					Symbol:   "PFC",
					Decimals: 18,
				},
				{
					Address:  common.HexToAddress("0x47B1d1bD5fbdE99aeA3b5d8Fb5a77BD143CBe5c5"),
					Name:     "WorthlessCoin",
					Symbol:   "WTL",
					Decimals: 18,
				},
				{
					Address:  common.HexToAddress("0x72cD4CEad49b26984bA7CA135D4c43F18dFCF373"),
					Name:     "DummyCoin",
					Symbol:   "DMM",
					Decimals: 18,
				},
			},
		},
	}
}
