/*
This file contains the UTXO data model shared by every provider adapter,
the coin selector and the transaction assembler.
  - PubKeyScriptType: the locking script type (as part of UTXO)
  - UTXO, the unspent transaction output, amounts in the smallest unit.
*/
package utxo

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

// PubKeyScript (LockingScript) type
type PubKeyScriptType int

// Enumerate of PubKeyScriptType
const (
	ANY_SCRIPT_T = iota
	P2PKH_SCRIPT_T
	P2WPKH_SCRIPT_T
)

// Represents an unspent transaction output as reported by a provider.
// Values are immutable once built; a UTXO set is re-fetched for every
// operation and never persisted.
type UTXO struct {
	TxID          string           // Identifier, human readable (hex)
	TxHash        *chainhash.Hash  // Identifier, used for tx search
	Vout          uint32           // exact index of the Tx's outputs to be spent
	Amount        int64            // in the smallest unit (satoshi)
	PkScriptT     PubKeyScriptType // Type of the locking script
	PkScript      []byte           // Locking Script itself
	Confirmations int64            // 0 = unconfirmed
}

// New builds a UTXO from the hex fields providers usually return.
// An empty scriptHex leaves PkScript nil; the assembler derives it from
// the spending address in that case.
func New(txID string, vout uint32, amount int64, scriptHex string, confirmations int64) (UTXO, error) {
	hash, err := chainhash.NewHashFromStr(txID)
	if err != nil {
		return UTXO{}, fmt.Errorf("invalid txid %q: %w", txID, err)
	}
	var script []byte
	if scriptHex != "" {
		script, err = hex.DecodeString(scriptHex)
		if err != nil {
			return UTXO{}, fmt.Errorf("invalid script of %s:%d: %w", txID, vout, err)
		}
	}
	return UTXO{
		TxID:          txID,
		TxHash:        hash,
		Vout:          vout,
		Amount:        amount,
		PkScriptT:     ScriptType(script),
		PkScript:      script,
		Confirmations: confirmations,
	}, nil
}

// ScriptType classifies a locking script.
func ScriptType(script []byte) PubKeyScriptType {
	switch {
	case len(script) == 0:
		return ANY_SCRIPT_T
	case txscript.IsPayToPubKeyHash(script):
		return P2PKH_SCRIPT_T
	case txscript.IsPayToWitnessPubKeyHash(script):
		return P2WPKH_SCRIPT_T
	default:
		return ANY_SCRIPT_T
	}
}

// Outpoint is the identity of the output, "txid:vout".
func (u *UTXO) Outpoint() string {
	return fmt.Sprintf("%s:%d", u.TxID, u.Vout)
}

func (u *UTXO) ScriptHex() string {
	return hex.EncodeToString(u.PkScript)
}

// Return a human-readable amount in coins
// eg. 1e8 (satoshi) = 1.0 (BTC)
func (u *UTXO) AmountHuman() float64 {
	return float64(u.Amount) / 1e8
}
