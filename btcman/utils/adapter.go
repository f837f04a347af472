package utils

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/wire"
)

// DecodeRawTx parses a hex serialized transaction.
func DecodeRawTx(rawHex string) (*wire.MsgTx, error) {
	raw, err := hex.DecodeString(Remove0xPrefix(rawHex))
	if err != nil {
		return nil, err
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return tx, nil
}

// EncodeRawTx serializes tx to hex, the form explorers accept for broadcast.
func EncodeRawTx(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// TxIDFromHex computes the txid of a hex serialized transaction locally.
// Used when a provider reports a broadcast as already known.
func TxIDFromHex(rawHex string) (string, error) {
	tx, err := DecodeRawTx(rawHex)
	if err != nil {
		return "", err
	}
	return tx.TxHash().String(), nil
}
