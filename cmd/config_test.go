package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/multiwallet/asset"
)

const (
	regtest_priv_key_str = "cNSHjGk52rQ6iya8jdNT9VJ8dvvQ8kPAq5pcFHsYBYdDqahWuneH"
	abandon_mnemonic     = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
)

func resetViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestPrepareWalletConfigFromEnv(t *testing.T) {
	resetViper(t)
	t.Setenv(KEY_NETWORK, "regtest")
	t.Setenv(KEY_PRIVATE_KEY, regtest_priv_key_str)
	t.Setenv(KEY_POLL_INTERVAL, "250ms")
	t.Setenv(KEY_MAX_POLLS, "12")

	require.NoError(t, InitializeViper())
	wc, err := PrepareWalletConfig()
	require.NoError(t, err)

	assert.Equal(t, asset.Regtest, wc.Network)
	assert.Equal(t, regtest_priv_key_str, wc.PrivateKey)
	assert.Equal(t, 250*time.Millisecond, wc.PollInterval)
	assert.Equal(t, 12, wc.MaxPolls)
	assert.Equal(t, 2, wc.FetchAttempts)
	assert.Equal(t, "8080", wc.HttpPort)
	assert.False(t, wc.UseNode())
}

func TestPrepareWalletConfigFromFile(t *testing.T) {
	resetViper(t)
	file := filepath.Join(t.TempDir(), "wallet.yaml")
	content := "WALLET_NETWORK: mainnet\nWALLET_MNEMONIC: " + abandon_mnemonic + "\nBTC_RPC_SERVER: 127.0.0.1\nBTC_RPC_PORT: \"8332\"\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	t.Setenv(ENV_CONFIG_FILE_PATH, file)

	require.NoError(t, InitializeViper())
	wc, err := PrepareWalletConfig()
	require.NoError(t, err)
	assert.Equal(t, asset.Mainnet, wc.Network)
	assert.True(t, wc.UseNode())

	priv, err := LoadKey(wc)
	require.NoError(t, err)
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(priv.PubKey().SerializeCompressed()), &chaincfg.MainNetParams)
	require.NoError(t, err)
	assert.Equal(t, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA", addr.EncodeAddress())
}

func TestPrepareWalletConfigNeedsKey(t *testing.T) {
	resetViper(t)
	require.NoError(t, InitializeViper())
	_, err := PrepareWalletConfig()
	assert.ErrorContains(t, err, KEY_PRIVATE_KEY)
}

func TestMissingConfigFile(t *testing.T) {
	resetViper(t)
	t.Setenv(ENV_CONFIG_FILE_PATH, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, InitializeViper())
}

func TestNewWalletUserWithJournal(t *testing.T) {
	wc := &WalletConfig{
		Network:       asset.Testnet,
		PrivateKey:    regtest_priv_key_str,
		JournalDB:     filepath.Join(t.TempDir(), "journal.db"),
		FetchAttempts: 1,
	}
	wu, err := NewWalletUser(wc, false)
	require.NoError(t, err)
	defer wu.Close()

	require.NotNil(t, wu.Journal)
	assert.Equal(t, asset.All(), wu.Account.Assets())

	h, err := wu.Account.Handler(asset.BTC)
	require.NoError(t, err)
	assert.Equal(t, "mkVXZnqaaKt4puQNr4ovPHYg48mjguFCnT", h.Address())

	_, err = wu.MineEnoughBlocks(1)
	assert.Error(t, err)
}
