package assembler

/*
This file implements the "Locker" side.

Since locking scripts do not require any prior knowledge of private keys,
it is universal to all signer implementations.
*/

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// AppendPayToAddress adds an output paying amount to dst_addr.
// The address must belong to dst_chain_cfg.
func AppendPayToAddress(tx *wire.MsgTx, dst_chain_cfg *chaincfg.Params, dst_addr string, amount int64) (*wire.MsgTx, error) {
	dstAddress, err := btcutil.DecodeAddress(dst_addr, dst_chain_cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot decode address %s: %w", dst_addr, err)
	}
	if !dstAddress.IsForNet(dst_chain_cfg) {
		return nil, fmt.Errorf("address %s is not for network %s", dst_addr, dst_chain_cfg.Name)
	}

	txOutScript, err := txscript.PayToAddrScript(dstAddress)
	if err != nil {
		return nil, err
	}
	tx.AddTxOut(wire.NewTxOut(amount, txOutScript))
	return tx, nil
}

// AppendP2PKH is AppendPayToAddress restricted to legacy receivers.
func AppendP2PKH(tx *wire.MsgTx, dst_chain_cfg *chaincfg.Params, dst_addr string, amount int64) (*wire.MsgTx, error) {
	dstAddress, err := btcutil.DecodeAddress(dst_addr, dst_chain_cfg)
	if err != nil {
		return nil, err
	}
	if _, ok := dstAddress.(*btcutil.AddressPubKeyHash); !ok {
		return nil, fmt.Errorf("%s is not a P2PKH (legacy) address", dst_addr)
	}
	return AppendPayToAddress(tx, dst_chain_cfg, dst_addr, amount)
}
