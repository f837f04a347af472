/*
Locker and Unlocker are the basic interfaces
that a tx assembler shall satisfy.

By implementing Locker, the tx assembler
can add pay outputs to P2PKH/P2WPKH receivers.

By implementing Unlocker, the tx assembler
can unlock UTXOs (inputs) previously received.

Remember:
Always create the "lock" part firstly on Tx, then create the "unlock" part on Tx.
Otherwise the Tx verification may fail.
*/
package assembler

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"

	"github.com/TEENet-io/multiwallet/btcman/utxo"
)

// Locker defines the actions
// that produce the "locking" part of a Tx.
type Locker interface {
	// Add a pay-to-any-type-of-address clause to Tx.
	// amount is in the smallest unit.
	AppendPayToAddress(tx *wire.MsgTx, dst_chain_cfg *chaincfg.Params, dst_addr string, amount int64) (*wire.MsgTx, error)
}

// Unlocker defines the actions
// that produce the "unlocking" part of a Tx (aka the inputs).
type Unlocker interface {
	// Given a list of UTXO(s), unlock each UTXO and add to unlocking section of MsgTx.
	// How to unlock depends on the chain's signature hash rules.
	Unlock(tx *wire.MsgTx, prevOutputs []utxo.UTXO) (*wire.MsgTx, error)
}

// Operator can both lock and unlock, and knows the address its
// UTXOs are received on.
type Operator interface {
	Locker
	Unlocker
	FundingAddress() btcutil.Address
}

// Builder turns a spend request into a signed transaction.
// *Assembler is the implementation used by the wallet.
type Builder interface {
	Build(req BuildRequest) (*SignedTx, error)
}

var _ Builder = (*Assembler)(nil)
