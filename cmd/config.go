package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/TEENet-io/multiwallet/asset"
	"github.com/TEENet-io/multiwallet/confirmations"
	"github.com/TEENet-io/multiwallet/wallet"
)

// Configuration keys, read from the environment or from the file
// named by ENV_CONFIG_FILE_PATH.
const (
	ENV_CONFIG_FILE_PATH = "WALLET_CONFIG"

	KEY_NETWORK             = "WALLET_NETWORK"
	KEY_PRIVATE_KEY         = "WALLET_PRIVATE_KEY"
	KEY_MNEMONIC            = "WALLET_MNEMONIC"
	KEY_MNEMONIC_PASSPHRASE = "WALLET_MNEMONIC_PASSPHRASE"
	KEY_KEY_INDEX           = "WALLET_KEY_INDEX"
	KEY_JOURNAL_DB          = "WALLET_JOURNAL_DB"
	KEY_HTTP_IP             = "WALLET_HTTP_IP"
	KEY_HTTP_PORT           = "WALLET_HTTP_PORT"
	KEY_FETCH_ATTEMPTS      = "WALLET_FETCH_ATTEMPTS"
	KEY_PROVIDER_ATTEMPTS   = "WALLET_PROVIDER_ATTEMPTS"
	KEY_RATE_LIMIT          = "WALLET_RATE_LIMIT"
	KEY_POLL_INTERVAL       = "WALLET_POLL_INTERVAL"
	KEY_MAX_POLLS           = "WALLET_MAX_POLLS"
	KEY_LOG_LEVEL           = "WALLET_LOG_LEVEL"

	KEY_BTC_RPC_SERVER   = "BTC_RPC_SERVER"
	KEY_BTC_RPC_PORT     = "BTC_RPC_PORT"
	KEY_BTC_RPC_USERNAME = "BTC_RPC_USERNAME"
	KEY_BTC_RPC_PWD      = "BTC_RPC_PWD"
)

type WalletConfig struct {
	Network asset.Network

	PrivateKey         string // WIF or hex, wins over the mnemonic
	Mnemonic           string
	MnemonicPassphrase string
	KeyIndex           uint32

	JournalDB string // sqlite file, empty disables the journal

	HttpIp   string
	HttpPort string

	FetchAttempts    int     // outer retry around the utxo fallback
	ProviderAttempts int     // retry inside each provider
	RateLimit        float64 // requests per second per provider
	PollInterval     time.Duration
	MaxPolls         int

	LogLevel string

	BtcRpcServer   string // optional bitcoind node, used first for BTC
	BtcRpcPort     string
	BtcRpcUsername string
	BtcRpcPwd      string
}

func setDefaults() {
	viper.SetDefault(KEY_NETWORK, string(asset.Testnet))
	viper.SetDefault(KEY_HTTP_IP, "127.0.0.1")
	viper.SetDefault(KEY_HTTP_PORT, "8080")
	viper.SetDefault(KEY_FETCH_ATTEMPTS, wallet.DEFAULT_FETCH_ATTEMPTS)
	viper.SetDefault(KEY_POLL_INTERVAL, confirmations.POLL_INTERVAL)
	viper.SetDefault(KEY_LOG_LEVEL, "info")
}

// InitializeViper reads the environment and, when the file named by
// ENV_CONFIG_FILE_PATH exists, the configuration file.
func InitializeViper() error {
	viper.AutomaticEnv()
	setDefaults()

	file := viper.GetString(ENV_CONFIG_FILE_PATH)
	if file == "" {
		return nil
	}
	if !FileExists(file) {
		return fmt.Errorf("configuration file not found: %s", file)
	}
	viper.SetConfigFile(file)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading configuration file: %w", err)
	}
	return nil
}

// PrepareWalletConfig collects the configuration from viper.
func PrepareWalletConfig() (*WalletConfig, error) {
	wc := &WalletConfig{
		Network:            asset.ParseNetwork(viper.GetString(KEY_NETWORK)),
		PrivateKey:         viper.GetString(KEY_PRIVATE_KEY),
		Mnemonic:           viper.GetString(KEY_MNEMONIC),
		MnemonicPassphrase: viper.GetString(KEY_MNEMONIC_PASSPHRASE),
		KeyIndex:           viper.GetUint32(KEY_KEY_INDEX),
		JournalDB:          viper.GetString(KEY_JOURNAL_DB),
		HttpIp:             viper.GetString(KEY_HTTP_IP),
		HttpPort:           viper.GetString(KEY_HTTP_PORT),
		FetchAttempts:      viper.GetInt(KEY_FETCH_ATTEMPTS),
		ProviderAttempts:   viper.GetInt(KEY_PROVIDER_ATTEMPTS),
		RateLimit:          viper.GetFloat64(KEY_RATE_LIMIT),
		PollInterval:       viper.GetDuration(KEY_POLL_INTERVAL),
		MaxPolls:           viper.GetInt(KEY_MAX_POLLS),
		LogLevel:           viper.GetString(KEY_LOG_LEVEL),
		BtcRpcServer:       viper.GetString(KEY_BTC_RPC_SERVER),
		BtcRpcPort:         viper.GetString(KEY_BTC_RPC_PORT),
		BtcRpcUsername:     viper.GetString(KEY_BTC_RPC_USERNAME),
		BtcRpcPwd:          viper.GetString(KEY_BTC_RPC_PWD),
	}
	if wc.PrivateKey == "" && wc.Mnemonic == "" {
		return nil, fmt.Errorf("either %s or %s must be set", KEY_PRIVATE_KEY, KEY_MNEMONIC)
	}
	if wc.FetchAttempts < 1 {
		return nil, fmt.Errorf("%s must be at least 1", KEY_FETCH_ATTEMPTS)
	}
	return wc, nil
}

// UseNode reports whether a bitcoind node is configured.
func (wc *WalletConfig) UseNode() bool {
	return wc.BtcRpcServer != "" && wc.BtcRpcPort != ""
}
