package asset

import (
	"net/http"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/multiwallet/btcman/assembler"
	"github.com/TEENet-io/multiwallet/btcman/utxo"
)

const (
	regtest_priv_key_str = "cNSHjGk52rQ6iya8jdNT9VJ8dvvQ8kPAq5pcFHsYBYdDqahWuneH"
	regtest_addr_str     = "mkVXZnqaaKt4puQNr4ovPHYg48mjguFCnT"
)

func TestParse(t *testing.T) {
	cases := map[string]Asset{
		"btc":          BTC,
		" Bitcoin ":    BTC,
		"bitcoin cash": BCH,
		"BCASH":        BCH,
		"zcash":        ZEC,
		"Doge":         DOGE,
		"dogecoin":     DOGE,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := Parse("eth")
	assert.ErrorIs(t, err, ErrUnknownAsset)
}

func TestParseNetwork(t *testing.T) {
	assert.Equal(t, Mainnet, ParseNetwork("MAINNET"))
	assert.Equal(t, Regtest, ParseNetwork("regtest"))
	assert.Equal(t, Testnet, ParseNetwork("testnet3"))
	assert.Equal(t, Testnet, ParseNetwork(""))
}

func TestNewChain(t *testing.T) {
	for _, a := range All() {
		for _, n := range []Network{Mainnet, Testnet, Regtest} {
			c, err := NewChain(a, n)
			require.NoError(t, err)
			assert.Equal(t, DECIMALS, c.Decimals)
			assert.NotNil(t, c.Params)
		}
	}

	c, err := NewChain(DOGE, Testnet)
	require.NoError(t, err)
	assert.Equal(t, "DOGETEST", c.SochainCode)
	assert.Equal(t, "DOGE/testnet", c.String())

	_, err = NewChain("XRP", Mainnet)
	assert.ErrorIs(t, err, ErrUnknownAsset)
}

func TestParamsAreNotShared(t *testing.T) {
	assert.NotSame(t, &chaincfg.MainNetParams, paramsFor(BCH, Mainnet))
	assert.Equal(t, chaincfg.MainNetParams.Name, "mainnet")
	assert.Equal(t, "bch-mainnet", paramsFor(BCH, Mainnet).Name)
	assert.Equal(t, byte(0x1e), paramsFor(DOGE, Mainnet).PubKeyHashAddrID)
	assert.Equal(t, byte(0x00), chaincfg.MainNetParams.PubKeyHashAddrID)
}

func TestAddresses(t *testing.T) {
	wif, err := btcutil.DecodeWIF(regtest_priv_key_str)
	require.NoError(t, err)
	pub := wif.PrivKey.PubKey()
	hash := btcutil.Hash160(pub.SerializeCompressed())

	btcReg, _ := NewChain(BTC, Regtest)
	addr, err := btcReg.Address(pub)
	require.NoError(t, err)
	assert.Equal(t, regtest_addr_str, addr)

	// legacy BCH addresses share the bitcoin encoding
	btcMain, _ := NewChain(BTC, Mainnet)
	bchMain, _ := NewChain(BCH, Mainnet)
	a1, _ := btcMain.Address(pub)
	a2, _ := bchMain.Address(pub)
	assert.Equal(t, a1, a2)
	assert.Equal(t, "1", a1[:1])

	dogeMain, _ := NewChain(DOGE, Mainnet)
	d, err := dogeMain.Address(pub)
	require.NoError(t, err)
	assert.Equal(t, "D", d[:1])

	zecMain, _ := NewChain(ZEC, Mainnet)
	z, err := zecMain.Address(pub)
	require.NoError(t, err)
	assert.Equal(t, "t1", z[:2])
	payload, version, err := base58.CheckDecode(z)
	require.NoError(t, err)
	assert.Equal(t, byte(0x1c), version)
	assert.Equal(t, append([]byte{0xb8}, hash...), payload)

	zecTest, _ := NewChain(ZEC, Testnet)
	z, err = zecTest.Address(pub)
	require.NoError(t, err)
	assert.Equal(t, "tm", z[:2])
}

func TestAssembler(t *testing.T) {
	wif, err := btcutil.DecodeWIF(regtest_priv_key_str)
	require.NoError(t, err)

	zec, _ := NewChain(ZEC, Mainnet)
	assert.False(t, zec.CanSign())
	ass, err := zec.Assembler(wif.PrivKey)
	require.NoError(t, err)
	_, err = ass.Build(assembler.BuildRequest{Destination: "x", Amount: 1, Inputs: []utxo.UTXO{{Amount: 10}}})
	assert.ErrorIs(t, err, assembler.ErrUnsupportedChain)

	bch, _ := NewChain(BCH, Testnet)
	ass, err = bch.Assembler(wif.PrivKey)
	require.NoError(t, err)
	assert.IsType(t, &assembler.ForkIDOperator{}, ass.Op)

	doge, _ := NewChain(DOGE, Mainnet)
	ass, err = doge.Assembler(wif.PrivKey)
	require.NoError(t, err)
	assert.IsType(t, &assembler.NativeOperator{}, ass.Op)
	d, _ := doge.Address(wif.PrivKey.PubKey())
	assert.Equal(t, d, ass.Op.FundingAddress().EncodeAddress())
}

func TestDefaultProviders(t *testing.T) {
	cfg := ProviderConfig{HTTPClient: &http.Client{}, Attempts: 2}

	btc, _ := NewChain(BTC, Mainnet)
	list := btc.DefaultProviders(cfg)
	require.Len(t, list, 3)
	assert.Equal(t, "blockstream", list[0].Provider.Name())
	assert.True(t, list[0].Reliable)
	assert.True(t, list[2].MainnetOnly)

	reg, _ := NewChain(BTC, Regtest)
	assert.Empty(t, reg.DefaultProviders(cfg))

	for _, a := range All() {
		c, _ := NewChain(a, Testnet)
		for _, e := range c.DefaultProviders(cfg) {
			assert.NotEmpty(t, e.Provider.Name())
		}
	}
}
