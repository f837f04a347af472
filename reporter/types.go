package reporter

import (
	"errors"
	"time"

	"github.com/TEENet-io/multiwallet/btcman/assembler"
	"github.com/TEENet-io/multiwallet/explorer"
	"github.com/TEENet-io/multiwallet/txjournal"
)

type AddressResponse struct {
	Asset   string `json:"asset"`
	Network string `json:"network"`
	Address string `json:"address"`
}

type BalanceResponse struct {
	Asset    string `json:"asset"`
	Address  string `json:"address"`
	Balance  string `json:"balance"`  // coins, decimal string
	Smallest int64  `json:"smallest"` // smallest unit
}

type SendRequest struct {
	Asset             string `json:"asset" binding:"required"`
	To                string `json:"to" binding:"required"`
	Amount            string `json:"amount" binding:"required"` // coins, decimal string
	Fee               *int64 `json:"fee,omitempty"`             // smallest unit
	SubtractFee       bool   `json:"subtract_fee,omitempty"`
	WaitConfirmations int64  `json:"wait_confirmations,omitempty"`
}

type SendResponse struct {
	TxID   string `json:"tx_id"`
	Status string `json:"status"`
}

type TxResponse struct {
	ID            string    `json:"id"`
	Asset         string    `json:"asset"`
	Network       string    `json:"network"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Amount        int64     `json:"amount"`
	Fee           int64     `json:"fee"`
	TxID          string    `json:"tx_id,omitempty"`
	Status        string    `json:"status"`
	Confirmations int64     `json:"confirmations"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewTxResponse(e *txjournal.Entry) TxResponse {
	return TxResponse{
		ID:            e.ID,
		Asset:         e.Asset,
		Network:       e.Network,
		From:          e.From,
		To:            e.To,
		Amount:        e.Amount,
		Fee:           e.Fee,
		TxID:          e.TxID,
		Status:        string(e.Status),
		Confirmations: e.Confirmations,
		Error:         e.Error,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// errors the caller can fix by changing the request
func isClientError(err error) bool {
	for _, target := range []error{
		assembler.ErrInsufficientFunds,
		assembler.ErrUnsupportedChain,
		assembler.ErrInvalidAmount,
		assembler.ErrInvalidFee,
		assembler.ErrAmountBelowFee,
		explorer.ErrRejected,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
