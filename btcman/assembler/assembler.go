package assembler

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"

	"github.com/TEENet-io/multiwallet/btcman/utils"
	"github.com/TEENet-io/multiwallet/btcman/utxo"
)

type Assembler struct {
	ChainConfig *chaincfg.Params // which chain it is on (per call, never registered globally)
	Op          Operator         // can do unlock/locking script on a tx, nil when signing is unsupported
}

// BuildRequest describes a single-receiver spend.
type BuildRequest struct {
	Destination   string      // receiver
	Amount        int64       // amount to receiver, smallest unit
	ChangeAddress string      // receiver of the change, defaults to the operator's address
	Fee           int64       // absolute mining fee, smallest unit
	SubtractFee   bool        // take the fee out of Amount instead of the change
	Inputs        []utxo.UTXO // already selected UTXO(s)
}

// Required is the input value needed to satisfy the request.
func (r *BuildRequest) Required() int64 {
	if r.SubtractFee {
		return r.Amount
	}
	return r.Amount + r.Fee
}

// SignedTx is a fully signed transaction ready for broadcast.
type SignedTx struct {
	Tx   *wire.MsgTx
	TxID string
	raw  string
}

func (s *SignedTx) Hex() string {
	return s.raw
}

// Build checks the request, crafts the outputs and signs every input.
func (myAss *Assembler) Build(req BuildRequest) (*SignedTx, error) {
	if myAss.Op == nil {
		return nil, ErrUnsupportedChain
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Fee < 0 {
		return nil, ErrInvalidFee
	}
	if req.SubtractFee && req.Amount <= req.Fee {
		return nil, ErrAmountBelowFee
	}
	sum := utxo.Sum(req.Inputs)
	if len(req.Inputs) == 0 || sum < req.Required() {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, sum, req.Required())
	}

	change_addr := req.ChangeAddress
	if change_addr == "" {
		change_addr = myAss.Op.FundingAddress().EncodeAddress()
	}
	dst_amount := req.Amount
	if req.SubtractFee {
		dst_amount = req.Amount - req.Fee
	}

	tx, err := myAss.MakeTransferOutTx(req.Destination, dst_amount, change_addr, req.Fee, req.Inputs)
	if err != nil {
		return nil, err
	}
	raw, err := utils.EncodeRawTx(tx)
	if err != nil {
		return nil, err
	}
	return &SignedTx{Tx: tx, TxID: tx.TxHash().String(), raw: raw}, nil
}

// Create a locking script on a Tx, to transfer out money to a single receiver.
// This type of locking sends funds to dst_addr and keeps the change to change_addr.
// The change_amount is implied by:
// sum(utxo) = dst_amount + fee_amount + change_amount
func (myAss *Assembler) craftTransferOutOutput(
	tx *wire.MsgTx,
	prevOutputs []utxo.UTXO, // UTXO(s) to spend from.
	dst_addr string, // receiver
	dst_amount int64, // amount to receiver in the smallest unit
	change_addr string, // receiver to receive the change
	fee_amount int64, // amount of mining fee in the smallest unit
) (*wire.MsgTx, error) {
	sum := utxo.Sum(prevOutputs)
	change_amount := sum - dst_amount - fee_amount
	if change_amount < 0 {
		return nil, fmt.Errorf("%w: sum %d, dst_amount %d, fee_amount %d", ErrInsufficientFunds, sum, dst_amount, fee_amount)
	}

	// 1st output: to the dst receiver
	tx, err := myAss.Op.AppendPayToAddress(tx, myAss.ChainConfig, dst_addr, dst_amount)
	if err != nil {
		return nil, err
	}

	// 2nd output: to the change receiver, only if change > 0
	if change_amount > 0 {
		tx, err = myAss.Op.AppendPayToAddress(tx, myAss.ChainConfig, change_addr, change_amount)
		if err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// Make a raw tx that transfers coins to dst_addr.
// It takes care of both locking + unlocking.
// After deduction of mining fee, keep the change to change_addr.
func (myAss *Assembler) MakeTransferOutTx(
	dst_addr string,
	dst_amount int64,
	change_addr string,
	fee_amount int64,
	prevOutputs []utxo.UTXO,
) (*wire.MsgTx, error) {
	if myAss.Op == nil {
		return nil, ErrUnsupportedChain
	}
	tx := wire.NewMsgTx(wire.TxVersion)

	// Stuff the locking scripts first.
	tx, err := myAss.craftTransferOutOutput(
		tx,
		prevOutputs,
		dst_addr,
		dst_amount,
		change_addr,
		fee_amount,
	)
	if err != nil {
		return nil, err
	}

	// Stuff the unlocking scripts, secondly.
	tx, err = myAss.Op.Unlock(tx, prevOutputs)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
