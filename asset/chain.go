package asset

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/TEENet-io/multiwallet/btcman/assembler"
)

const DECIMALS = 8

type SigningScheme int

const (
	SIGN_NONE   SigningScheme = iota // balance and address only
	SIGN_LEGACY                      // pre-segwit signature hash
	SIGN_FORKID                      // BIP143 digest with SIGHASH_FORKID
)

// Chain is an immutable description of one asset on one network.
// It is passed by value; nothing in it is shared mutable state.
type Chain struct {
	Asset       Asset
	Network     Network
	Decimals    int
	Params      *chaincfg.Params
	SochainCode string
	Signing     SigningScheme
	CoinType    uint32 // SLIP-44, 1 on test networks
}

func NewChain(a Asset, n Network) (Chain, error) {
	params := paramsFor(a, n)
	if params == nil {
		return Chain{}, fmt.Errorf("%w: %q", ErrUnknownAsset, a)
	}
	c := Chain{
		Asset:    a,
		Network:  n,
		Decimals: DECIMALS,
		Params:   params,
	}
	switch a {
	case BTC:
		c.Signing = SIGN_LEGACY
		c.SochainCode = sochainCode("BTC", n)
		c.CoinType = 0
	case BCH:
		c.Signing = SIGN_FORKID
		c.CoinType = 145
	case ZEC:
		c.Signing = SIGN_NONE
		c.SochainCode = sochainCode("ZEC", n)
		c.CoinType = 133
	case DOGE:
		c.Signing = SIGN_LEGACY
		c.SochainCode = sochainCode("DOGE", n)
		c.CoinType = 3
	}
	if !n.IsMainnet() {
		c.CoinType = 1
	}
	return c, nil
}

func sochainCode(ticker string, n Network) string {
	if n.IsMainnet() {
		return ticker
	}
	return ticker + "TEST"
}

func (c Chain) IsMainnet() bool {
	return c.Network.IsMainnet()
}

func (c Chain) String() string {
	return string(c.Asset) + "/" + string(c.Network)
}

// CanSign reports whether transactions can be built on this chain.
func (c Chain) CanSign() bool {
	return c.Signing != SIGN_NONE
}

// Address encodes the P2PKH address of a compressed public key.
func (c Chain) Address(pub *btcec.PublicKey) (string, error) {
	hash := btcutil.Hash160(pub.SerializeCompressed())
	if c.Asset == ZEC {
		prefix := zecTestP2PKH
		if c.IsMainnet() {
			prefix = zecMainP2PKH
		}
		return base58.CheckEncode(append([]byte{prefix[1]}, hash...), prefix[0]), nil
	}
	addr, err := btcutil.NewAddressPubKeyHash(hash, c.Params)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// Assembler returns a transaction assembler signing with priv. On chains
// without signing support the assembler has no operator and every build
// fails with assembler.ErrUnsupportedChain.
func (c Chain) Assembler(priv *btcec.PrivateKey) (*assembler.Assembler, error) {
	ass := &assembler.Assembler{ChainConfig: c.Params}
	signer := assembler.NewNativeSignerFromKey(priv, c.Params)

	switch c.Signing {
	case SIGN_LEGACY:
		op, err := assembler.NewNativeOperator(*signer)
		if err != nil {
			return nil, err
		}
		ass.Op = op
	case SIGN_FORKID:
		op, err := assembler.NewForkIDOperator(*signer)
		if err != nil {
			return nil, err
		}
		ass.Op = op
	}
	return ass, nil
}
