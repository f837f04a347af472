package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/TEENet-io/multiwallet/asset"
)

const MAX_BALANCE_WORKERS = 4

// Account holds one key and a handler for every asset it can serve on
// one network.
type Account struct {
	network  asset.Network
	handlers map[asset.Asset]*Handler
}

type AccountConfig struct {
	Network   asset.Network
	Providers asset.ProviderConfig
	Options   []Option
}

// NewAccount builds a handler for every asset that has at least one
// provider on the configured network. Assets without providers are
// skipped with a warning.
func NewAccount(priv *btcec.PrivateKey, cfg AccountConfig) (*Account, error) {
	acc := &Account{
		network:  cfg.Network,
		handlers: make(map[asset.Asset]*Handler),
	}
	for _, a := range asset.All() {
		chain, err := asset.NewChain(a, cfg.Network)
		if err != nil {
			return nil, err
		}
		providers := chain.DefaultProviders(cfg.Providers)
		if len(providers) == 0 {
			logger.WithField("chain", chain.String()).Warn("no providers, asset disabled")
			continue
		}
		h, err := NewHandler(chain, priv, providers, cfg.Options...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", chain, err)
		}
		acc.handlers[a] = h
	}
	if len(acc.handlers) == 0 {
		return nil, ErrNoProviders
	}
	return acc, nil
}

func (acc *Account) Network() asset.Network {
	return acc.network
}

// Assets lists the enabled assets in their canonical order.
func (acc *Account) Assets() []asset.Asset {
	var out []asset.Asset
	for _, a := range asset.All() {
		if _, ok := acc.handlers[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

func (acc *Account) Handler(a asset.Asset) (*Handler, error) {
	h, ok := acc.handlers[a]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not enabled on %s", asset.ErrUnknownAsset, a, acc.network)
	}
	return h, nil
}

// HandlerFor resolves a ticker or coin name, e.g. "bitcoin cash".
func (acc *Account) HandlerFor(symbol string) (*Handler, error) {
	a, err := asset.Parse(symbol)
	if err != nil {
		return nil, err
	}
	return acc.Handler(a)
}

// Balance is the outcome of one asset's balance query.
type Balance struct {
	Asset  asset.Asset
	Amount *big.Rat
	Err    error
}

// Balances queries the given assets concurrently, all enabled ones when
// none are given. A failing asset does not fail the others; its error is
// reported in its own entry. The returned error is only set when ctx
// ended before every query ran.
func (acc *Account) Balances(ctx context.Context, assets ...asset.Asset) ([]Balance, error) {
	if len(assets) == 0 {
		assets = acc.Assets()
	}
	out := make([]Balance, len(assets))

	var g errgroup.Group
	g.SetLimit(MAX_BALANCE_WORKERS)
	for i, a := range assets {
		g.Go(func() error {
			out[i].Asset = a
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return err
			}
			h, err := acc.Handler(a)
			if err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Amount, out[i].Err = h.GetBalance(ctx)
			return nil
		})
	}
	return out, g.Wait()
}
