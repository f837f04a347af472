// Implements the interface of Operator
// 1) Uses a local private key as backbone.
// 2) Signs inputs with the legacy (pre-segwit) signature hash.

package assembler

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/TEENet-io/multiwallet/btcman/utxo"
)

// Basic single private key signer.
type NativeSigner struct {
	ChainConfig *chaincfg.Params  // which chain it is on, never a shared global
	PrivKey     *btcec.PrivateKey // private key
	PubKey      *btcec.PublicKey  // public key accordingly
}

// Recover a basic signer from
// private key string (aka wallet-import-format, WIF)
// This is the standard private key string that bitcoin-core software exports.
func NewNativeSigner(priv_key_wif_str string, chain_config *chaincfg.Params) (*NativeSigner, error) {
	priv_key_wif, err := DecodeWIF(priv_key_wif_str)
	if err != nil {
		return nil, err
	}
	return NewNativeSignerFromKey(priv_key_wif.PrivKey, chain_config), nil
}

func NewNativeSignerFromKey(priv_key *btcec.PrivateKey, chain_config *chaincfg.Params) *NativeSigner {
	return &NativeSigner{chain_config, priv_key, priv_key.PubKey()}
}

// PubKeyHash is hash160 of the compressed public key.
func (s *NativeSigner) PubKeyHash() []byte {
	return btcutil.Hash160(s.PubKey.SerializeCompressed())
}

// NativeOperator receives funds via a legacy address (P2PKH).
// It can combine inputs and can send out to
// both P2PKH & P2WPKH receivers.
type NativeOperator struct {
	NativeSigner
	P2PKH *btcutil.AddressPubKeyHash // legacy address, call .EncodeAddress() to get the human readable form
}

func NewNativeOperator(bw NativeSigner) (*NativeOperator, error) {
	p2pkhAddr, err := btcutil.NewAddressPubKeyHash(bw.PubKeyHash(), bw.ChainConfig)
	if err != nil {
		return nil, err
	}
	return &NativeOperator{bw, p2pkhAddr}, nil
}

func (lo *NativeOperator) FundingAddress() btcutil.Address {
	return lo.P2PKH
}

func (lo *NativeOperator) AppendPayToAddress(tx *wire.MsgTx, dst_chain_cfg *chaincfg.Params, dst_addr string, amount int64) (*wire.MsgTx, error) {
	return AppendPayToAddress(tx, dst_chain_cfg, dst_addr, amount)
}

// Unlock operation generates the tx's inputs section,
// with every previous output, make a SignatureScript (to unlock it).
// Warning: You should generate Locking Scripts (outputs) firstly on tx,
// then call this function to generate the inputs.
func (lo *NativeOperator) Unlock(tx *wire.MsgTx, prevOutputs []utxo.UTXO) (*wire.MsgTx, error) {
	scripts, err := prevScripts(prevOutputs, lo.P2PKH)
	if err != nil {
		return nil, err
	}
	// Both tx.TxIn[] and tx.TxOut[] shall be ready before signing,
	// so the inputs go in with empty scripts first.
	addInputs(tx, prevOutputs)

	for idx := range prevOutputs {
		script, err := txscript.SignatureScript(tx, idx, scripts[idx], txscript.SigHashAll, lo.PrivKey, true)
		if err != nil {
			return nil, err
		}
		tx.TxIn[idx].SignatureScript = script
	}
	return tx, nil
}

func addInputs(tx *wire.MsgTx, prevOutputs []utxo.UTXO) {
	for _, item := range prevOutputs {
		txIn := wire.NewTxIn(wire.NewOutPoint(item.TxHash, item.Vout), nil, nil)
		tx.AddTxIn(txIn)
	}
}

// prevScripts returns the locking script of every output. Providers that
// omit the script are covered by the spender's own P2PKH script.
func prevScripts(prevOutputs []utxo.UTXO, owner btcutil.Address) ([][]byte, error) {
	scripts := make([][]byte, len(prevOutputs))
	var ownScript []byte
	for idx, item := range prevOutputs {
		if len(item.PkScript) > 0 {
			scripts[idx] = item.PkScript
			continue
		}
		if ownScript == nil {
			s, err := txscript.PayToAddrScript(owner)
			if err != nil {
				return nil, err
			}
			ownScript = s
		}
		scripts[idx] = ownScript
	}
	return scripts, nil
}
