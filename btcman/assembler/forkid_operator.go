// Implements the interface of Operator for chains that commit to the
// spent amount through a BIP143 style digest with a fork id flag
// (SIGHASH_ALL | SIGHASH_FORKID, as Bitcoin Cash does).

package assembler

import (
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/TEENet-io/multiwallet/btcman/utxo"
)

const (
	SIGHASH_FORKID     = 0x40
	SIGHASH_ALL_FORKID = txscript.SigHashType(uint32(txscript.SigHashAll) | SIGHASH_FORKID)
)

type ForkIDOperator struct {
	NativeSigner
	P2PKH *btcutil.AddressPubKeyHash
}

func NewForkIDOperator(bw NativeSigner) (*ForkIDOperator, error) {
	p2pkhAddr, err := btcutil.NewAddressPubKeyHash(bw.PubKeyHash(), bw.ChainConfig)
	if err != nil {
		return nil, err
	}
	return &ForkIDOperator{bw, p2pkhAddr}, nil
}

func (fo *ForkIDOperator) FundingAddress() btcutil.Address {
	return fo.P2PKH
}

func (fo *ForkIDOperator) AppendPayToAddress(tx *wire.MsgTx, dst_chain_cfg *chaincfg.Params, dst_addr string, amount int64) (*wire.MsgTx, error) {
	return AppendPayToAddress(tx, dst_chain_cfg, dst_addr, amount)
}

func (fo *ForkIDOperator) Unlock(tx *wire.MsgTx, prevOutputs []utxo.UTXO) (*wire.MsgTx, error) {
	scripts, err := prevScripts(prevOutputs, fo.P2PKH)
	if err != nil {
		return nil, err
	}
	addInputs(tx, prevOutputs)

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for idx, item := range prevOutputs {
		fetcher.AddPrevOut(tx.TxIn[idx].PreviousOutPoint, wire.NewTxOut(item.Amount, scripts[idx]))
	}
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	pubKey := fo.PubKey.SerializeCompressed()
	for idx, item := range prevOutputs {
		hash, err := txscript.CalcWitnessSigHash(scripts[idx], sigHashes, SIGHASH_ALL_FORKID, tx, idx, item.Amount)
		if err != nil {
			return nil, err
		}
		sig := ecdsa.Sign(fo.PrivKey, hash)
		sigBytes := append(sig.Serialize(), byte(SIGHASH_ALL_FORKID))

		script, err := txscript.NewScriptBuilder().AddData(sigBytes).AddData(pubKey).Script()
		if err != nil {
			return nil, err
		}
		tx.TxIn[idx].SignatureScript = script
	}
	return tx, nil
}
