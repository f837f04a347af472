package asset

import (
	"net/http"

	"github.com/TEENet-io/multiwallet/explorer"
)

const (
	BITPAY_BCH_MAINNET = "https://bch-insight.bitpay.com/api"
	DOGEBLOCKS_MAINNET = "https://dogeblocks.com/api"
)

// ProviderEntry places a provider in an endpoint list.
// Reliable providers are tried first in their given order, the rest
// in random order. MainnetOnly providers are left out on test networks.
type ProviderEntry struct {
	Provider    explorer.Provider
	Reliable    bool
	MainnetOnly bool
}

type ProviderConfig struct {
	HTTPClient *http.Client
	Attempts   int     // per-provider attempts, 0 keeps the adapter default
	RateLimit  float64 // requests per second per provider, 0 disables pacing
	Nodes      map[Asset]explorer.Provider
}

func (cfg ProviderConfig) options() []explorer.Option {
	var opts []explorer.Option
	if cfg.HTTPClient != nil {
		opts = append(opts, explorer.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Attempts > 0 {
		opts = append(opts, explorer.WithAttempts(cfg.Attempts))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, explorer.WithRateLimit(cfg.RateLimit, 1))
	}
	return opts
}

// DefaultProviders lists the explorers known to serve c. A node
// configured for the asset always comes first.
func (c Chain) DefaultProviders(cfg ProviderConfig) []ProviderEntry {
	var out []ProviderEntry
	if node, ok := cfg.Nodes[c.Asset]; ok && node != nil {
		out = append(out, ProviderEntry{Provider: node, Reliable: true})
	}
	main := c.IsMainnet()

	switch c.Asset {
	case BTC:
		switch c.Network {
		case Mainnet:
			out = append(out,
				ProviderEntry{Provider: explorer.NewEsplora("blockstream", explorer.BLOCKSTREAM_MAINNET, cfg.options()...), Reliable: true},
				ProviderEntry{Provider: explorer.NewSochain("sochain", explorer.SOCHAIN_API, c.SochainCode, c.Decimals, cfg.options()...)},
				ProviderEntry{Provider: explorer.NewEsplora("mempool.space", explorer.MEMPOOL_MAINNET, cfg.options()...), MainnetOnly: true},
			)
		case Testnet:
			out = append(out,
				ProviderEntry{Provider: explorer.NewEsplora("blockstream", explorer.BLOCKSTREAM_TESTNET, cfg.options()...), Reliable: true},
				ProviderEntry{Provider: explorer.NewSochain("sochain", explorer.SOCHAIN_API, c.SochainCode, c.Decimals, cfg.options()...), Reliable: true},
				ProviderEntry{Provider: explorer.NewEsplora("mempool.space", explorer.MEMPOOL_TESTNET, cfg.options()...), Reliable: true},
			)
		}
	case BCH:
		if main {
			out = append(out,
				ProviderEntry{Provider: explorer.NewInsight("bitcoin.com", explorer.BITCOIN_COM_BCH_MAINNET, cfg.options()...), Reliable: true},
				ProviderEntry{Provider: explorer.NewInsight("bitpay", BITPAY_BCH_MAINNET, cfg.options()...), MainnetOnly: true},
			)
		} else if c.Network == Testnet {
			out = append(out,
				ProviderEntry{Provider: explorer.NewInsight("bitcoin.com", explorer.BITCOIN_COM_BCH_TESTNET, cfg.options()...), Reliable: true},
			)
		}
	case ZEC:
		insightURL := explorer.ZCASH_INSIGHT_TESTNET
		if main {
			insightURL = explorer.ZCASH_INSIGHT_MAINNET
		}
		out = append(out,
			ProviderEntry{Provider: explorer.NewInsight("zcash-insight", insightURL, cfg.options()...), Reliable: true},
			ProviderEntry{Provider: explorer.NewSochain("sochain", explorer.SOCHAIN_API, c.SochainCode, c.Decimals, cfg.options()...), Reliable: !main},
		)
	case DOGE:
		out = append(out,
			ProviderEntry{Provider: explorer.NewSochain("sochain", explorer.SOCHAIN_API, c.SochainCode, c.Decimals, cfg.options()...), Reliable: true},
			ProviderEntry{Provider: explorer.NewInsight("dogeblocks", DOGEBLOCKS_MAINNET, cfg.options()...), MainnetOnly: true},
		)
	}
	return out
}
