package explorer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/TEENet-io/multiwallet/btcman/utils"
	"github.com/TEENet-io/multiwallet/btcman/utxo"
)

const (
	SOCHAIN_API = "https://sochain.com/api/v2"

	SOCHAIN_STATUS_SUCCESS = "success"
)

// Sochain speaks the chain.so v2 API. One adapter instance serves one
// network code, e.g. "BTC", "BTCTEST", "DOGE", "ZEC".
type Sochain struct {
	base
	network  string
	decimals int
}

func NewSochain(name string, baseURL string, network string, decimals int, opts ...Option) *Sochain {
	return &Sochain{base: newBase(name, baseURL, opts), network: network, decimals: decimals}
}

type sochainEnvelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

type sochainUnspent struct {
	TxID          string `json:"txid"`
	OutputNo      uint32 `json:"output_no"`
	ScriptHex     string `json:"script_hex"`
	Value         string `json:"value"`
	Confirmations int64  `json:"confirmations"`
}

type sochainUnspentData struct {
	Network string           `json:"network"`
	Address string           `json:"address"`
	Txs     []sochainUnspent `json:"txs"`
}

type sochainTxData struct {
	TxID          string `json:"txid"`
	Confirmations int64  `json:"confirmations"`
}

type sochainSendRequest struct {
	TxHex string `json:"tx_hex"`
}

type sochainSendData struct {
	Network string `json:"network"`
	TxID    string `json:"txid"`
}

func checkStatus(status string, path string) error {
	if status != SOCHAIN_STATUS_SUCCESS {
		return fmt.Errorf("%w: %s answered status %q", ErrRejected, path, status)
	}
	return nil
}

func (s *Sochain) FetchUTXOs(ctx context.Context, address string, minConfirmations int64) ([]utxo.UTXO, error) {
	return withRetry(ctx, &s.base, "utxos", func(ctx context.Context) ([]utxo.UTXO, error) {
		path := "/get_tx_unspent/" + s.network + "/" + url.PathEscape(address)
		var env sochainEnvelope[sochainUnspentData]
		if err := s.getJSON(ctx, path, &env); err != nil {
			return nil, err
		}
		if err := checkStatus(env.Status, path); err != nil {
			return nil, err
		}

		out := make([]utxo.UTXO, 0, len(env.Data.Txs))
		for _, item := range env.Data.Txs {
			amount, err := utils.ParseDecimal(item.Value, s.decimals)
			if err != nil {
				return nil, fmt.Errorf("%w: value of %s:%d: %v", ErrMalformedResponse, item.TxID, item.OutputNo, err)
			}
			u, err := utxo.New(item.TxID, item.OutputNo, amount, item.ScriptHex, item.Confirmations)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
			out = append(out, u)
		}
		return utxo.FilterByConfirmations(out, minConfirmations), nil
	})
}

func (s *Sochain) FetchConfirmations(ctx context.Context, txID string) (int64, error) {
	return withRetry(ctx, &s.base, "confirmations", func(ctx context.Context) (int64, error) {
		path := "/get_tx/" + s.network + "/" + url.PathEscape(txID)
		var env sochainEnvelope[sochainTxData]
		if err := s.getJSON(ctx, path, &env); err != nil {
			return 0, err
		}
		if err := checkStatus(env.Status, path); err != nil {
			return 0, err
		}
		return env.Data.Confirmations, nil
	})
}

func (s *Sochain) BroadcastTransaction(ctx context.Context, signedTxHex string) (string, error) {
	return withRetry(ctx, &s.base, "broadcast", func(ctx context.Context) (string, error) {
		path := "/send_tx/" + s.network
		body, err := json.Marshal(sochainSendRequest{TxHex: signedTxHex})
		if err != nil {
			return "", err
		}
		data, err := s.do(ctx, http.MethodPost, path, "application/json", body)
		if err != nil {
			return broadcastError(s.name, signedTxHex, err)
		}
		var env sochainEnvelope[sochainSendData]
		if err := json.Unmarshal(data, &env); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrMalformedResponse, path, err)
		}
		if err := checkStatus(env.Status, path); err != nil {
			return ResolveAlreadyKnown(s.name, signedTxHex, fmt.Errorf("%w: %s", err, truncate(string(data), 200)))
		}
		if env.Data.TxID == "" {
			return "", fmt.Errorf("%w: %s returned no txid", ErrMalformedResponse, path)
		}
		return env.Data.TxID, nil
	})
}
