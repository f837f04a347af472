package wallet

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/multiwallet/asset"
	"github.com/TEENet-io/multiwallet/explorer"
)

func TestAccountRegtest(t *testing.T) {
	node := newFakeProvider("node", satoshis(2))
	acc, err := NewAccount(privKey(t), AccountConfig{
		Network: asset.Regtest,
		Providers: asset.ProviderConfig{
			Nodes: map[asset.Asset]explorer.Provider{asset.BTC: node},
		},
	})
	require.NoError(t, err)

	// BCH has no public regtest explorer
	assert.NotContains(t, acc.Assets(), asset.BCH)
	assert.Equal(t, asset.BTC, acc.Assets()[0])

	h, err := acc.HandlerFor("bitcoin")
	require.NoError(t, err)
	assert.Equal(t, p1_legacy_addr_str, h.Address())

	_, err = acc.HandlerFor("bitcoin cash")
	assert.ErrorIs(t, err, asset.ErrUnknownAsset)
	_, err = acc.HandlerFor("ether")
	assert.ErrorIs(t, err, asset.ErrUnknownAsset)

	balances, err := acc.Balances(context.Background(), asset.BTC, asset.BCH)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, asset.BTC, balances[0].Asset)
	require.NoError(t, balances[0].Err)
	assert.Equal(t, 0, balances[0].Amount.Cmp(big.NewRat(2, 1)))
	assert.Equal(t, asset.BCH, balances[1].Asset)
	assert.ErrorIs(t, balances[1].Err, asset.ErrUnknownAsset)
}

func TestAccountBalancesAreIndependent(t *testing.T) {
	good := newFakeProvider("good", satoshis(1))
	acc := &Account{
		network: asset.Regtest,
		handlers: map[asset.Asset]*Handler{
			asset.BTC:  newHandler(t, asset.BTC, asset.Regtest, reliable(good)),
			asset.DOGE: newHandler(t, asset.DOGE, asset.Testnet, reliable(newFakeProvider("down")), WithFetchAttempts(1)),
		},
	}

	balances, err := acc.Balances(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, asset.BTC, balances[0].Asset)
	assert.NoError(t, balances[0].Err)
	assert.Equal(t, asset.DOGE, balances[1].Asset)
	assert.ErrorIs(t, balances[1].Err, errProviderDown)
}

func TestAccountBalancesCancelled(t *testing.T) {
	good := newFakeProvider("good", satoshis(1))
	acc := &Account{
		network:  asset.Regtest,
		handlers: map[asset.Asset]*Handler{asset.BTC: newHandler(t, asset.BTC, asset.Regtest, reliable(good))},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	balances, err := acc.Balances(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, balances, 1)
	assert.Equal(t, asset.BTC, balances[0].Asset)
	assert.ErrorIs(t, balances[0].Err, context.Canceled)
	assert.Equal(t, 0, good.count("utxos"))
}
