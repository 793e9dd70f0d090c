// Package config loads client settings and the static per-network address
// tables (exchange contract address plus whitelisted tokens).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"poolaclient/internal/model"
)

// Network is one entry of the address table.
type Network struct {
	PoolaAddress common.Address
	Tokens       []model.Token
}

// TokenByAddress resolves a whitelisted token descriptor. Addresses are
// normalized, so lookup is case-insensitive.
func (n Network) TokenByAddress(address common.Address) (model.Token, bool) {
	for _, token := range n.Tokens {
		if token.Address == address {
			return token, true
		}
	}
	return model.Token{}, false
}

// Config holds values merged from config file, environment, and flags.
type Config struct {
	Network       string
	RPCURL        string
	LogLevel      string
	Confirmations uint64
	PollInterval  time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
	Networks      map[string]Network
}

// ActiveNetwork resolves the selected network entry. Selecting an unknown
// network is a configuration error.
func (c Config) ActiveNetwork() (Network, error) {
	network, ok := c.Networks[c.Network]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q", c.Network)
	}
	return network, nil
}

type rawToken struct {
	Address  string `mapstructure:"address"`
	Symbol   string `mapstructure:"symbol"`
	Name     string `mapstructure:"name"`
	Decimals uint8  `mapstructure:"decimals"`
}

type rawNetwork struct {
	Poola  string     `mapstructure:"poola"`
	Tokens []rawToken `mapstructure:"tokens"`
}

// Load merges config file, POOLA_* environment variables, and flags.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", "ropsten")
	v.SetDefault("log-level", "info")
	v.SetDefault("confirmations", uint64(1))
	v.SetDefault("poll-interval", 2*time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	networks := DefaultNetworks()
	if v.IsSet("networks") {
		var raw map[string]rawNetwork
		if err := v.UnmarshalKey("networks", &raw); err != nil {
			return Config{}, fmt.Errorf("decode networks: %w", err)
		}
		for name, entry := range raw {
			network, err := buildNetwork(entry)
			if err != nil {
				return Config{}, fmt.Errorf("network %q: %w", name, err)
			}
			networks[name] = network
		}
	}

	cfg := Config{
		Network:       v.GetString("network"),
		RPCURL:        v.GetString("rpc"),
		LogLevel:      v.GetString("log-level"),
		Confirmations: v.GetUint64("confirmations"),
		PollInterval:  v.GetDuration("poll-interval"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		Networks:      networks,
	}

	return cfg, nil
}

func buildNetwork(raw rawNetwork) (Network, error) {
	if !common.IsHexAddress(raw.Poola) {
		return Network{}, fmt.Errorf("invalid exchange address %q", raw.Poola)
	}
	network := Network{PoolaAddress: common.HexToAddress(raw.Poola)}
	for _, token := range raw.Tokens {
		if !common.IsHexAddress(token.Address) {
			return Network{}, fmt.Errorf("invalid token address %q", token.Address)
		}
		network.Tokens = append(network.Tokens, model.Token{
			Address:  common.HexToAddress(token.Address),
			Symbol:   token.Symbol,
			Name:     token.Name,
			Decimals: token.Decimals,
		})
	}
	return network, nil
}
