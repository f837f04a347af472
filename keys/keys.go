// Package keys turns wallet secrets into signing keys.
package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	"github.com/TEENet-io/multiwallet/btcman/utils"
)

// BIP-44 path: m/44'/coin'/account'/change/index
const (
	PURPOSE_BIP44   = bip32.FirstHardenedChild + 44
	CHANGE_EXTERNAL = 0
	CHANGE_INTERNAL = 1

	MNEMONIC_ENTROPY_BITS = 256
)

var ErrInvalidSecret = errors.New("invalid secret")

// Decode accepts a WIF string or a 32-byte hex private key.
func Decode(secret string) (*btcec.PrivateKey, error) {
	secret = strings.TrimSpace(secret)
	if wif, err := btcutil.DecodeWIF(secret); err == nil {
		return wif.PrivKey, nil
	}
	raw, err := hex.DecodeString(utils.Remove0xPrefix(secret))
	if err != nil || len(raw) != btcec.PrivKeyBytesLen {
		return nil, ErrInvalidSecret
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return priv, nil
}

// NewPrivateKey generates a fresh key and returns it in wallet import
// format for the given chain.
func NewPrivateKey(params *chaincfg.Params) (string, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return "", err
	}
	return EncodeWIF(priv, params)
}

func EncodeWIF(priv *btcec.PrivateKey, params *chaincfg.Params) (string, error) {
	wif, err := btcutil.NewWIF(priv, params, true)
	if err != nil {
		return "", err
	}
	return wif.String(), nil
}

// NewMnemonic creates a 24 word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MNEMONIC_ENTROPY_BITS)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// FromMnemonic derives the external key at m/44'/coinType'/account'/0/index.
func FromMnemonic(mnemonic string, passphrase string, coinType uint32, account uint32, index uint32) (*btcec.PrivateKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("%w: mnemonic", ErrInvalidSecret)
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	path := []uint32{
		PURPOSE_BIP44,
		bip32.FirstHardenedChild + coinType,
		bip32.FirstHardenedChild + account,
		CHANGE_EXTERNAL,
		index,
	}
	for _, i := range path {
		key, err = key.NewChildKey(i)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", i, err)
		}
	}

	// private keys may carry a leading zero byte
	raw := key.Key
	if len(raw) == btcec.PrivKeyBytesLen+1 && raw[0] == 0 {
		raw = raw[1:]
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	return priv, nil
}
