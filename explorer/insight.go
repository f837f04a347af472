package explorer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/TEENet-io/multiwallet/btcman/utxo"
)

const (
	BITCOIN_COM_BCH_MAINNET = "https://rest.bitcoin.com/v2/insight"
	BITCOIN_COM_BCH_TESTNET = "https://trest.bitcoin.com/v2/insight"
	ZCASH_INSIGHT_MAINNET   = "https://explorer.z.cash/api"
	ZCASH_INSIGHT_TESTNET   = "https://explorer.testnet.z.cash/api"
)

// Insight speaks the bitpay Insight API used by several BCH and ZEC
// explorers.
type Insight struct {
	base
}

func NewInsight(name string, baseURL string, opts ...Option) *Insight {
	return &Insight{base: newBase(name, baseURL, opts)}
}

type insightUtxo struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	ScriptPubKey  string `json:"scriptPubKey"`
	Satoshis      *int64 `json:"satoshis"`
	Confirmations int64  `json:"confirmations"`
}

type insightTx struct {
	TxID          string `json:"txid"`
	Confirmations int64  `json:"confirmations"`
}

type insightSendRequest struct {
	RawTx string `json:"rawtx"`
}

type insightSendResponse struct {
	TxID string `json:"txid"`
}

func (i *Insight) FetchUTXOs(ctx context.Context, address string, minConfirmations int64) ([]utxo.UTXO, error) {
	return withRetry(ctx, &i.base, "utxos", func(ctx context.Context) ([]utxo.UTXO, error) {
		var raw []insightUtxo
		if err := i.getJSON(ctx, "/addr/"+url.PathEscape(address)+"/utxo", &raw); err != nil {
			return nil, err
		}
		out := make([]utxo.UTXO, 0, len(raw))
		for _, item := range raw {
			if item.Satoshis == nil {
				return nil, fmt.Errorf("%w: utxo %s:%d has no satoshis field", ErrMalformedResponse, item.TxID, item.Vout)
			}
			u, err := utxo.New(item.TxID, item.Vout, *item.Satoshis, item.ScriptPubKey, item.Confirmations)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
			out = append(out, u)
		}
		return utxo.FilterByConfirmations(out, minConfirmations), nil
	})
}

func (i *Insight) FetchConfirmations(ctx context.Context, txID string) (int64, error) {
	return withRetry(ctx, &i.base, "confirmations", func(ctx context.Context) (int64, error) {
		var tx insightTx
		if err := i.getJSON(ctx, "/tx/"+url.PathEscape(txID), &tx); err != nil {
			return 0, err
		}
		return tx.Confirmations, nil
	})
}

func (i *Insight) BroadcastTransaction(ctx context.Context, signedTxHex string) (string, error) {
	return withRetry(ctx, &i.base, "broadcast", func(ctx context.Context) (string, error) {
		body, err := json.Marshal(insightSendRequest{RawTx: signedTxHex})
		if err != nil {
			return "", err
		}
		data, err := i.do(ctx, http.MethodPost, "/tx/send", "application/json", body)
		if err != nil {
			return broadcastError(i.name, signedTxHex, err)
		}
		var resp insightSendResponse
		if err := json.Unmarshal(data, &resp); err != nil || resp.TxID == "" {
			return "", fmt.Errorf("%w: broadcast answered %q", ErrMalformedResponse, truncate(string(data), 80))
		}
		return resp.TxID, nil
	})
}
