package bitcoin

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// Supported broadcast backends.
const (
	ElectrsBackend     = "electrs"
	ElectrumBackend    = "electrum"
	BlockCypherBackend = "blockcypher"
	RPCBackend         = "rpc"
	OfflineBackend     = "offline"
)

// Config stores configuration of the bitcoin network connection.
type Config struct {
	// Network is one of "mainnet", "testnet3", "regtest", "simnet" or
	// "signet". Defaults to mainnet.
	Network string

	// BroadcastBackend selects the handle used to broadcast transactions.
	// Defaults to electrs.
	BroadcastBackend string

	ElectrsURL  string
	Electrum    ElectrumConfig
	BlockCypher BlockCypherConfig
	RPC         RPCConfig
}

// NetParams returns parameters of the configured network.
func (c *Config) NetParams() (*chaincfg.Params, error) {
	switch c.Network {
	case "", chaincfg.MainNetParams.Name:
		return &chaincfg.MainNetParams, nil
	case chaincfg.TestNet3Params.Name:
		return &chaincfg.TestNet3Params, nil
	case chaincfg.RegressionNetParams.Name:
		return &chaincfg.RegressionNetParams, nil
	case chaincfg.SimNetParams.Name:
		return &chaincfg.SimNetParams, nil
	case chaincfg.SigNetParams.Name:
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported bitcoin network [%s]", c.Network)
	}
}

// Connect creates the handle of the configured broadcast backend.
func Connect(ctx context.Context, config *Config) (Handle, error) {
	switch config.BroadcastBackend {
	case "", ElectrsBackend:
		if config.ElectrsURL == "" {
			return nil, fmt.Errorf("electrs backend requires ElectrsURL")
		}
		return NewElectrsConnection(config.ElectrsURL), nil
	case ElectrumBackend:
		return ConnectElectrum(ctx, &config.Electrum)
	case BlockCypherBackend:
		return NewBlockCypherConnection(&config.BlockCypher), nil
	case RPCBackend:
		return ConnectRPC(ctx, &config.RPC)
	case OfflineBackend:
		return OfflineHandle{}, nil
	default:
		return nil, fmt.Errorf(
			"unsupported broadcast backend [%s]",
			config.BroadcastBackend,
		)
	}
}
