// WalletUser presents an entity that
// 1) Holds user credentials (one key for every asset)
// 2) Performs sends through the wallet handlers
// 3) Keeps the send journal and the optional bitcoind connection open

package cmd

import (
	"database/sql"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/multiwallet/asset"
	"github.com/TEENet-io/multiwallet/btcman/assembler"
	btcrpc "github.com/TEENet-io/multiwallet/btcman/rpc"
	"github.com/TEENet-io/multiwallet/database"
	"github.com/TEENet-io/multiwallet/explorer"
	"github.com/TEENet-io/multiwallet/keys"
	"github.com/TEENet-io/multiwallet/txjournal"
	"github.com/TEENet-io/multiwallet/wallet"
)

const (
	REGTEST_GENERATE_BLOCKS = 101 // Generate 101 blocks in regtest to mature a coinbase.
)

type WalletUser struct {
	Account *wallet.Account
	Journal *txjournal.Store // nil when no journal is configured
	Config  *WalletConfig

	btcRpcClient *btcrpc.RpcClient // nil without a node
	db           *sql.DB
	btcChain     asset.Chain
}

// LoadKey decodes the configured private key or derives it from the mnemonic.
func LoadKey(wc *WalletConfig) (*btcec.PrivateKey, error) {
	if wc.PrivateKey != "" {
		return keys.Decode(wc.PrivateKey)
	}
	btcChain, err := asset.NewChain(asset.BTC, wc.Network)
	if err != nil {
		return nil, err
	}
	return keys.FromMnemonic(wc.Mnemonic, wc.MnemonicPassphrase, btcChain.CoinType, 0, wc.KeyIndex)
}

// Create a new wallet user.
// registerAddress: if true, the BTC address is imported into the bitcoind node
// so that it tracks the address's outputs. Public nodes do not need it.
func NewWalletUser(wc *WalletConfig, registerAddress bool) (*WalletUser, error) {
	priv, err := LoadKey(wc)
	if err != nil {
		logger.WithField("network", wc.Network).Error("cannot load wallet key")
		return nil, err
	}
	btcChain, err := asset.NewChain(asset.BTC, wc.Network)
	if err != nil {
		return nil, err
	}
	wu := &WalletUser{Config: wc, btcChain: btcChain}

	providers := asset.ProviderConfig{
		Attempts:  wc.ProviderAttempts,
		RateLimit: wc.RateLimit,
	}
	if wc.UseNode() {
		wu.btcRpcClient, err = SetupBtcRpc(wc.BtcRpcServer, wc.BtcRpcPort, wc.BtcRpcUsername, wc.BtcRpcPwd, btcChain.Params)
		if err != nil {
			return nil, fmt.Errorf("failed to create btc rpc client: %w", err)
		}
		providers.Nodes = map[asset.Asset]explorer.Provider{asset.BTC: wu.btcRpcClient}
	}

	opts := []wallet.Option{
		wallet.WithFetchAttempts(wc.FetchAttempts),
		wallet.WithPollInterval(wc.PollInterval),
		wallet.WithMaxPolls(wc.MaxPolls),
	}
	if wc.JournalDB != "" {
		wu.db, err = database.OpenSQLite(wc.JournalDB)
		if err != nil {
			wu.Close()
			return nil, fmt.Errorf("cannot open journal %s: %w", wc.JournalDB, err)
		}
		wu.Journal, err = txjournal.NewStore(wu.db)
		if err != nil {
			wu.Close()
			return nil, err
		}
		opts = append(opts, wallet.WithJournal(wu.Journal))
	}

	wu.Account, err = wallet.NewAccount(priv, wallet.AccountConfig{
		Network:   wc.Network,
		Providers: providers,
		Options:   opts,
	})
	if err != nil {
		wu.Close()
		return nil, err
	}

	if registerAddress && wu.btcRpcClient != nil {
		btcAddr, err := btcChain.Address(priv.PubKey())
		if err != nil {
			wu.Close()
			return nil, err
		}
		if err := wu.btcRpcClient.ImportAddress(btcAddr, ""); err != nil {
			logger.WithField("user_addr", btcAddr).Error("cannot import user address to btc rpc node")
			wu.Close()
			return nil, err
		}
	}
	return wu, nil
}

// Close releases the journal and the rpc connection.
func (wu *WalletUser) Close() {
	if wu.Journal != nil {
		wu.Journal.Close()
	}
	if wu.db != nil {
		wu.db.Close()
	}
	if wu.btcRpcClient != nil {
		wu.btcRpcClient.Close()
	}
}

// MineEnoughBlocks mines blocks paying the coinbase to the user's BTC
// address. Regtest only.
func (wu *WalletUser) MineEnoughBlocks(n int64) ([]*chainhash.Hash, error) {
	if wu.Config.Network != asset.Regtest || wu.btcRpcClient == nil {
		logger.Error("mine blocks only works in regtest mode with a node")
		return nil, fmt.Errorf("mining only works in btc regtest mode with a node configured")
	}
	if n <= 0 {
		n = REGTEST_GENERATE_BLOCKS
	}
	h, err := wu.Account.Handler(asset.BTC)
	if err != nil {
		return nil, err
	}
	coinbase, err := assembler.DecodeAddress(h.Address(), wu.btcChain.Params)
	if err != nil {
		return nil, err
	}
	return wu.btcRpcClient.GenerateBlocks(n, coinbase)
}
