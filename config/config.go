// Package config resolves the runtime configuration from flags,
// environment variables and defaults, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Environment variable names honored in addition to the CHAINSCOPE_*
// prefix mapping.
const (
	EnvEtherscanAPIKey = "ETHERSCAN_API_KEY"
	EnvRPCURL          = "CHAINSCOPE_RPC_URL"
)

// Config represents the application configuration
type Config struct {
	DataDir         string
	Chain           string
	TxLimit         int
	LogFile         string
	RPCURL          string
	EtherscanAPIKey string
}

// BindFlags registers the configuration flags on a flag set.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("data-dir", "", "directory for the local store (default: user config dir)")
	fs.String("chain", "mainnet", "default chain alias (mainnet, arbitrum, base, sepolia)")
	fs.Int("tx-limit", 25, "maximum transactions fetched per address")
	fs.String("log-file", "", "debug log file (default: logging disabled)")
}

// Load resolves the configuration. Flags win over environment variables,
// which win over defaults.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CHAINSCOPE")
	v.AutomaticEnv()

	v.SetDefault("chain", "mainnet")
	v.SetDefault("tx_limit", 25)

	if fs != nil {
		if err := v.BindPFlag("data_dir", fs.Lookup("data-dir")); err != nil {
			return Config{}, err
		}
		if err := v.BindPFlag("chain", fs.Lookup("chain")); err != nil {
			return Config{}, err
		}
		if err := v.BindPFlag("tx_limit", fs.Lookup("tx-limit")); err != nil {
			return Config{}, err
		}
		if err := v.BindPFlag("log_file", fs.Lookup("log-file")); err != nil {
			return Config{}, err
		}
	}

	// These two live outside the CHAINSCOPE_* mapping.
	if err := v.BindEnv("etherscan_api_key", EnvEtherscanAPIKey); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("rpc_url", EnvRPCURL); err != nil {
		return Config{}, err
	}

	cfg := Config{
		DataDir:         v.GetString("data_dir"),
		Chain:           v.GetString("chain"),
		TxLimit:         v.GetInt("tx_limit"),
		LogFile:         v.GetString("log_file"),
		RPCURL:          v.GetString("rpc_url"),
		EtherscanAPIKey: v.GetString("etherscan_api_key"),
	}

	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.DataDir = filepath.Join(base, "chainscope")
	}
	if cfg.TxLimit <= 0 {
		cfg.TxLimit = 25
	}

	return cfg, nil
}

// EnsureDataDir creates the data directory when missing.
func EnsureDataDir(cfg Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", cfg.DataDir, err)
	}
	return nil
}
