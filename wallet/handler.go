// Package wallet exposes balance and send operations for every supported
// asset on top of the provider fallback, coin selection and transaction
// builder layers.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/multiwallet/asset"
	"github.com/TEENet-io/multiwallet/btcman/assembler"
	"github.com/TEENet-io/multiwallet/btcman/utils"
	"github.com/TEENet-io/multiwallet/btcman/utxo"
	"github.com/TEENet-io/multiwallet/explorer"
	"github.com/TEENet-io/multiwallet/retry"
)

var (
	ErrNoProviders          = errors.New("no providers configured")
	ErrConfirmationTimeout  = errors.New("gave up waiting for confirmations")
	ErrInvalidConfirmations = errors.New("confirmations must not be negative")
)

// Handler serves one asset on one network for one key.
type Handler struct {
	chain     asset.Chain
	address   string
	builder   assembler.Builder
	providers []asset.ProviderEntry
	cfg       handlerConfig
}

func NewHandler(chain asset.Chain, priv *btcec.PrivateKey, providers []asset.ProviderEntry, opts ...Option) (*Handler, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	address, err := chain.Address(priv.PubKey())
	if err != nil {
		return nil, err
	}
	ass, err := chain.Assembler(priv)
	if err != nil {
		return nil, err
	}
	return &Handler{
		chain:     chain,
		address:   address,
		builder:   ass,
		providers: providers,
		cfg:       newHandlerConfig(opts),
	}, nil
}

func (h *Handler) Chain() asset.Chain {
	return h.chain
}

func (h *Handler) Address() string {
	return h.address
}

// endpoints renders one logical request against every provider:
// reliable ones in their configured order, then the rest shuffled.
// Mainnet-only providers are absent on test networks.
func endpoints[T any](h *Handler, op func(p explorer.Provider) retry.Operation[T]) []retry.Endpoint[T] {
	var reliable, others []retry.Endpoint[T]
	for _, e := range h.providers {
		ep := retry.Endpoint[T]{Name: e.Provider.Name(), Op: op(e.Provider)}
		if e.MainnetOnly {
			ep = retry.OnlyMainnet(h.chain.IsMainnet(), ep)
		}
		if e.Reliable {
			reliable = append(reliable, ep)
		} else {
			others = append(others, ep)
		}
	}
	return retry.Ordered(reliable, others)
}

// UTXOs lists the spendable outputs of the source address.
func (h *Handler) UTXOs(ctx context.Context, opts ...TxOption) ([]utxo.UTXO, error) {
	o := newTxOptions(opts)
	return h.fetchUTXOs(ctx, o)
}

func (h *Handler) fetchUTXOs(ctx context.Context, o TxOptions) ([]utxo.UTXO, error) {
	if o.Confirmations < 0 {
		return nil, ErrInvalidConfirmations
	}
	address := o.Address
	if address == "" {
		address = h.address
	}

	fetchAll := func(ctx context.Context) ([]utxo.UTXO, error) {
		return retry.Fallback(ctx, endpoints(h, func(p explorer.Provider) retry.Operation[[]utxo.UTXO] {
			return func(ctx context.Context) ([]utxo.UTXO, error) {
				return p.FetchUTXOs(ctx, address, o.Confirmations)
			}
		}))
	}
	utxos, err := retry.Retry(ctx, fetchAll, h.cfg.fetchAttempts, retry.WithLabel("fetch utxos"))
	if err != nil {
		return nil, err
	}

	// providers are trusted to filter, this keeps a misbehaving one honest
	utxos = utxo.FilterByConfirmations(utxos, o.Confirmations)
	logger.WithFields(logger.Fields{
		"asset":   h.chain.Asset,
		"address": address,
		"count":   len(utxos),
	}).Debug("fetched utxos")
	return utxos, nil
}

// GetBalanceInSmallestUnit sums the utxos of the source address.
func (h *Handler) GetBalanceInSmallestUnit(ctx context.Context, opts ...TxOption) (int64, error) {
	utxos, err := h.UTXOs(ctx, opts...)
	if err != nil {
		return 0, err
	}
	return utxo.Sum(utxos), nil
}

// GetBalance is GetBalanceInSmallestUnit expressed in coins.
func (h *Handler) GetBalance(ctx context.Context, opts ...TxOption) (*big.Rat, error) {
	sum, err := h.GetBalanceInSmallestUnit(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return utils.FromSmallestUnit(sum, h.chain.Decimals), nil
}

func (h *Handler) fetchConfirmations(ctx context.Context, txID string) (int64, error) {
	return retry.Fallback(ctx, endpoints(h, func(p explorer.Provider) retry.Operation[int64] {
		return func(ctx context.Context) (int64, error) {
			return p.FetchConfirmations(ctx, txID)
		}
	}))
}

func (h *Handler) broadcast(ctx context.Context, signedTxHex string) (string, error) {
	return retry.Fallback(ctx, endpoints(h, func(p explorer.Provider) retry.Operation[string] {
		return func(ctx context.Context) (string, error) {
			return p.BroadcastTransaction(ctx, signedTxHex)
		}
	}))
}
