package explorer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/TEENet-io/multiwallet/btcman/utxo"
)

const (
	BLOCKSTREAM_MAINNET = "https://blockstream.info/api"
	BLOCKSTREAM_TESTNET = "https://blockstream.info/testnet/api"
	MEMPOOL_MAINNET     = "https://mempool.space/api"
	MEMPOOL_TESTNET     = "https://mempool.space/testnet/api"
)

// Esplora speaks the Blockstream Esplora REST API, which mempool.space
// serves as well.
type Esplora struct {
	base
}

func NewEsplora(name string, baseURL string, opts ...Option) *Esplora {
	return &Esplora{base: newBase(name, baseURL, opts)}
}

type esploraStatus struct {
	Confirmed   bool  `json:"confirmed"`
	BlockHeight int64 `json:"block_height"`
}

type esploraUtxo struct {
	TxID   string        `json:"txid"`
	Vout   uint32        `json:"vout"`
	Value  int64         `json:"value"`
	Status esploraStatus `json:"status"`
}

func (e *Esplora) tipHeight(ctx context.Context) (int64, error) {
	data, err := e.do(ctx, http.MethodGet, "/blocks/tip/height", "", nil)
	if err != nil {
		return 0, err
	}
	h, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: tip height %q", ErrMalformedResponse, truncate(string(data), 40))
	}
	return h, nil
}

func depth(status esploraStatus, tip int64) int64 {
	if !status.Confirmed || status.BlockHeight <= 0 || tip < status.BlockHeight {
		return 0
	}
	return tip - status.BlockHeight + 1
}

// FetchUTXOs lists the unspent outputs of address. Esplora does not
// return scripts, so PkScript stays empty.
func (e *Esplora) FetchUTXOs(ctx context.Context, address string, minConfirmations int64) ([]utxo.UTXO, error) {
	return withRetry(ctx, &e.base, "utxos", func(ctx context.Context) ([]utxo.UTXO, error) {
		var raw []esploraUtxo
		if err := e.getJSON(ctx, "/address/"+url.PathEscape(address)+"/utxo", &raw); err != nil {
			return nil, err
		}

		var tip int64
		for _, item := range raw {
			if item.Status.Confirmed {
				h, err := e.tipHeight(ctx)
				if err != nil {
					return nil, err
				}
				tip = h
				break
			}
		}

		out := make([]utxo.UTXO, 0, len(raw))
		for _, item := range raw {
			u, err := utxo.New(item.TxID, item.Vout, item.Value, "", depth(item.Status, tip))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
			out = append(out, u)
		}
		return utxo.FilterByConfirmations(out, minConfirmations), nil
	})
}

func (e *Esplora) FetchConfirmations(ctx context.Context, txID string) (int64, error) {
	return withRetry(ctx, &e.base, "confirmations", func(ctx context.Context) (int64, error) {
		var status esploraStatus
		if err := e.getJSON(ctx, "/tx/"+url.PathEscape(txID)+"/status", &status); err != nil {
			return 0, err
		}
		if !status.Confirmed {
			return 0, nil
		}
		tip, err := e.tipHeight(ctx)
		if err != nil {
			return 0, err
		}
		return depth(status, tip), nil
	})
}

// BroadcastTransaction posts the raw hex. Esplora answers with the txid
// as plain text.
func (e *Esplora) BroadcastTransaction(ctx context.Context, signedTxHex string) (string, error) {
	return withRetry(ctx, &e.base, "broadcast", func(ctx context.Context) (string, error) {
		data, err := e.do(ctx, http.MethodPost, "/tx", "text/plain", []byte(signedTxHex))
		if err != nil {
			return broadcastError(e.name, signedTxHex, err)
		}
		txID := strings.TrimSpace(string(data))
		if len(txID) != 64 {
			return "", fmt.Errorf("%w: broadcast answered %q", ErrMalformedResponse, truncate(txID, 80))
		}
		return txID, nil
	})
}
