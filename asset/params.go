package asset

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
)

// Parameters of the forks are built once from copies of the bitcoin
// ones. None of them is registered with chaincfg.

var (
	bchMainNetParams = renamed(chaincfg.MainNetParams, "bch-mainnet")
	bchTestNetParams = renamed(chaincfg.TestNet3Params, "bch-testnet")
	bchRegNetParams  = renamed(chaincfg.RegressionNetParams, "bch-regtest")

	zecMainNetParams = renamed(chaincfg.MainNetParams, "zec-mainnet")
	zecTestNetParams = renamed(chaincfg.TestNet3Params, "zec-testnet")

	dogeMainNetParams = dogeParams(chaincfg.MainNetParams, "doge-mainnet", 0xc0c0c0c0, 0x1e, 0x16, 0x9e,
		[4]byte{0x02, 0xfa, 0xc3, 0x98}, [4]byte{0x02, 0xfa, 0xca, 0xfd})
	dogeTestNetParams = dogeParams(chaincfg.TestNet3Params, "doge-testnet", 0xdcb7c1fc, 0x71, 0xc4, 0xf1,
		[4]byte{0x04, 0x35, 0x83, 0x94}, [4]byte{0x04, 0x35, 0x87, 0xcf})
)

// zcash transparent address version bytes, two bytes each
var (
	zecMainP2PKH = [2]byte{0x1c, 0xb8}
	zecTestP2PKH = [2]byte{0x1d, 0x25}
)

func renamed(p chaincfg.Params, name string) *chaincfg.Params {
	p.Name = name
	return &p
}

func dogeParams(p chaincfg.Params, name string, net uint32, pkh, sh, wif byte, hdPriv, hdPub [4]byte) *chaincfg.Params {
	p.Name = name
	p.Net = wire.BitcoinNet(net)
	p.PubKeyHashAddrID = pkh
	p.ScriptHashAddrID = sh
	p.PrivateKeyID = wif
	p.HDPrivateKeyID = hdPriv
	p.HDPublicKeyID = hdPub
	p.Bech32HRPSegwit = ""
	return &p
}

func paramsFor(a Asset, n Network) *chaincfg.Params {
	switch a {
	case BTC:
		switch n {
		case Mainnet:
			return &chaincfg.MainNetParams
		case Regtest:
			return &chaincfg.RegressionNetParams
		default:
			return &chaincfg.TestNet3Params
		}
	case BCH:
		switch n {
		case Mainnet:
			return bchMainNetParams
		case Regtest:
			return bchRegNetParams
		default:
			return bchTestNetParams
		}
	case ZEC:
		if n == Mainnet {
			return zecMainNetParams
		}
		return zecTestNetParams
	case DOGE:
		if n == Mainnet {
			return dogeMainNetParams
		}
		return dogeTestNetParams
	}
	return nil
}
