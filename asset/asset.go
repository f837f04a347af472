// Package asset enumerates the supported coins and carries everything
// that differs per coin and network: address parameters, decimals,
// signing scheme and the explorer endpoints to use.
package asset

import (
	"errors"
	"fmt"
	"strings"
)

type Asset string

const (
	BTC  Asset = "BTC"
	BCH  Asset = "BCH"
	ZEC  Asset = "ZEC"
	DOGE Asset = "DOGE"
)

var ErrUnknownAsset = errors.New("unknown asset")

var aliases = map[string]Asset{
	"BTC":          BTC,
	"BITCOIN":      BTC,
	"BCH":          BCH,
	"BITCOIN CASH": BCH,
	"BCASH":        BCH,
	"BITCOINCASH":  BCH,
	"BITCOIN-CASH": BCH,
	"ZEC":          ZEC,
	"ZCASH":        ZEC,
	"DOGE":         DOGE,
	"DOGECOIN":     DOGE,
}

// Parse accepts a ticker or one of its common names, case-insensitive.
func Parse(symbol string) (Asset, error) {
	a, ok := aliases[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAsset, symbol)
	}
	return a, nil
}

func All() []Asset {
	return []Asset{BTC, BCH, ZEC, DOGE}
}

func (a Asset) String() string {
	return string(a)
}

type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Regtest Network = "regtest"
)

// ParseNetwork maps "mainnet" and "regtest" to themselves; anything
// else is treated as testnet.
func ParseNetwork(s string) Network {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mainnet", "main":
		return Mainnet
	case "regtest":
		return Regtest
	default:
		return Testnet
	}
}

func (n Network) IsMainnet() bool {
	return n == Mainnet
}
