// Package config reads the configuration of the redemption listener from a
// TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	timecfg "github.com/keep-network/tbtc-redemption/config/time"
	"github.com/keep-network/tbtc-redemption/pkg/chain/bitcoin"
	"github.com/keep-network/tbtc-redemption/pkg/chain/ethereum"
	"github.com/keep-network/tbtc-redemption/pkg/redemption"
)

const (
	ethereumURLEnvVariable        = "KEEP_ETHEREUM_URL"
	bitcoinRPCPasswordEnvVariable = "KEEP_BITCOIN_RPC_PASSWORD"

	recordsFileName = "redemptions.db"

	defaultDataDir = "."
)

// Config is the top level config structure.
type Config struct {
	Ethereum   ethereum.Config
	Bitcoin    bitcoin.Config
	Redemption Redemption
	Storage    Storage
	Metrics    Metrics
}

// Redemption stores configuration of the redemption monitor.
type Redemption struct {
	RequesterAddress string
	SignatureTimeout timecfg.Duration
	MinOutputValue   uint64
	LookbackBlocks   uint64
}

// Storage stores configuration of the audit log of redemptions. The audit
// log is kept in the working directory when DataDir is not set.
type Storage struct {
	DataDir string
}

// Metrics stores configuration of the metrics endpoint. Metrics are
// disabled when the port is not set.
type Metrics struct {
	Port int
	// Tick is the observation interval in seconds.
	Tick int
}

// GetTick returns the observation interval of metrics.
func (m *Metrics) GetTick() time.Duration {
	return time.Duration(m.Tick) * time.Second
}

// ReadConfig reads in the configuration file in .toml format. Ethereum URL
// and bitcoin RPC password are taken from the environment when set.
func ReadConfig(filePath string) (*Config, error) {
	config := &Config{}
	if _, err := toml.DecodeFile(filePath, config); err != nil {
		return nil, fmt.Errorf(
			"unable to decode .toml file [%s] error [%s]",
			filePath,
			err,
		)
	}

	if url := os.Getenv(ethereumURLEnvVariable); url != "" {
		config.Ethereum.URL = url
	}

	if password := os.Getenv(bitcoinRPCPasswordEnvVariable); password != "" {
		config.Bitcoin.RPC.Password = password
	}

	if config.Ethereum.URL == "" {
		return nil, fmt.Errorf("missing value for ethereum url; see ethereum section in configuration")
	}

	return config, nil
}

// GetSignatureTimeout returns the configured signature timeout or the
// default one.
func (r *Redemption) GetSignatureTimeout() time.Duration {
	if r.SignatureTimeout.ToDuration() == 0 {
		return redemption.DefaultSignatureTimeout
	}
	return r.SignatureTimeout.ToDuration()
}

// GetMinOutputValue returns the configured minimum output value or the
// default one.
func (r *Redemption) GetMinOutputValue() uint64 {
	if r.MinOutputValue == 0 {
		return redemption.DefaultMinOutputValue
	}
	return r.MinOutputValue
}

// MonitorConfig converts the section into the redemption monitor config.
func (r *Redemption) MonitorConfig() *redemption.Config {
	return &redemption.Config{
		RequesterAddress: r.RequesterAddress,
		SignatureTimeout: r.GetSignatureTimeout(),
		MinOutputValue:   r.GetMinOutputValue(),
		LookbackBlocks:   r.LookbackBlocks,
	}
}

// GetDataDir returns the configured data directory or the default one.
func (s *Storage) GetDataDir() string {
	if s.DataDir == "" {
		return defaultDataDir
	}
	return s.DataDir
}

// RecordsPath returns the path of the audit log database.
func (s *Storage) RecordsPath() string {
	return filepath.Join(s.GetDataDir(), recordsFileName)
}
