package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"

	"github.com/TEENet-io/multiwallet/btcman/utils"
	"github.com/TEENet-io/multiwallet/btcman/utxo"
	"github.com/TEENet-io/multiwallet/explorer"
)

const (
	MAX_CONFIRM = 9999999
	RPC_NAME    = "bitcoind"
)

var ErrOutputNotFound = errors.New("output not found in transaction")

type RpcClientConfig struct {
	ServerAddr  string // ip address of server
	Port        string // port of server
	Username    string
	Pwd         string
	ChainConfig *chaincfg.Params // network the node runs, used to decode addresses
}

// Wrapper of btc rpc client.
// It serves as a provider next to the explorer services, typically the
// only one on regtest.
type RpcClient struct {
	ServerAddr  string // ip address of server
	Port        string // port of server
	Username    string
	Pwd         string
	chainConfig *chaincfg.Params
	client      *rpcclient.Client
}

var _ explorer.Provider = (*RpcClient)(nil)

// Create a new RPC client which
// contains several useful functions
// to interact with bitcoin node.
func NewRpcClient(rcc *RpcClientConfig) (*RpcClient, error) {
	// Connect to the Bitcoin node using HTTP
	client, err := rpcclient.New(&rpcclient.ConnConfig{
		Host:         rcc.ServerAddr + ":" + rcc.Port,
		User:         rcc.Username,
		Pass:         rcc.Pwd,
		HTTPPostMode: true, // original bitcoin only supports HTTP POST mode
		DisableTLS:   true, // original bitcoin does not support TLS
	}, nil)
	if err != nil {
		return nil, err
	}

	params := rcc.ChainConfig
	if params == nil {
		params = &chaincfg.RegressionNetParams
	}
	return &RpcClient{rcc.ServerAddr, rcc.Port, rcc.Username, rcc.Pwd, params, client}, nil
}

// Close the rpc client
func (r *RpcClient) Close() {
	r.client.Shutdown()
}

func (r *RpcClient) Name() string {
	return RPC_NAME
}

// Get the UTXO(s) of an address.
// Notice: the node has to track the address (see ImportAddress).
// Notice: the result is specific to the address type given.
func (r *RpcClient) GetUtxoList(myAddress btcutil.Address, minConfirmations int) ([]utxo.UTXO, error) {
	unspentOutputs, err := r.client.ListUnspentMinMaxAddresses(minConfirmations, MAX_CONFIRM, []btcutil.Address{myAddress})
	if err != nil {
		return nil, err
	}

	u := make([]utxo.UTXO, 0, len(unspentOutputs))
	for _, item := range unspentOutputs {
		amount, err := btcutil.NewAmount(item.Amount)
		if err != nil {
			return nil, err
		}
		entry, err := utxo.New(item.TxID, item.Vout, int64(amount), item.ScriptPubKey, item.Confirmations)
		if err != nil {
			return nil, err
		}
		u = append(u, entry)
	}
	return u, nil
}

// FetchUTXOs implements explorer.Provider.
func (r *RpcClient) FetchUTXOs(ctx context.Context, address string, minConfirmations int64) ([]utxo.UTXO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr, err := btcutil.DecodeAddress(address, r.chainConfig)
	if err != nil {
		return nil, err
	}
	list, err := r.GetUtxoList(addr, int(minConfirmations))
	if err != nil {
		return nil, err
	}
	return utxo.FilterByConfirmations(list, minConfirmations), nil
}

// FetchConfirmations implements explorer.Provider.
func (r *RpcClient) FetchConfirmations(ctx context.Context, txID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	txHash, err := chainhash.NewHashFromStr(txID)
	if err != nil {
		return 0, err
	}
	verbose, err := r.client.GetRawTransactionVerbose(txHash)
	if err != nil {
		return 0, err
	}
	return int64(verbose.Confirmations), nil
}

// BroadcastTransaction implements explorer.Provider.
func (r *RpcClient) BroadcastTransaction(ctx context.Context, signedTxHex string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tx, err := utils.DecodeRawTx(signedTxHex)
	if err != nil {
		return "", err
	}
	txHash, err := r.SendRawTx(tx)
	if err != nil {
		txID, err := explorer.ResolveAlreadyKnown(RPC_NAME, signedTxHex, err)
		if err != nil && isRejection(err) {
			return "", fmt.Errorf("%w: %w", explorer.ErrRejected, err)
		}
		return txID, err
	}
	return txHash.String(), nil
}

// isRejection reports node answers refusing the transaction itself.
func isRejection(err error) bool {
	var rpcErr *btcjson.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	return rpcErr.Code == btcjson.ErrRPCVerify ||
		rpcErr.Code == btcjson.ErrRPCVerifyRejected ||
		rpcErr.Code == btcjson.ErrRPCDeserialization
}

// Send raw transaction to bitcoin network.
func (r *RpcClient) SendRawTx(tx *wire.MsgTx) (*chainhash.Hash, error) {
	// allowHighFees=true: the fee is chosen by the caller, do not let the
	// node second-guess it.
	return r.client.SendRawTransaction(tx, true)
}

// Ask the node to watch an address without importing its key.
func (r *RpcClient) ImportAddress(address string, label string) error {
	if label == "" {
		return r.client.ImportAddressRescan(address, label, false)
	}
	return r.client.ImportAddressRescan(address, label, true)
}

// Generate a given number of blocks. Regtest only.
func (r *RpcClient) GenerateBlocks(numBlocks int64, coinbase btcutil.Address) ([]*chainhash.Hash, error) {
	if r.chainConfig.Net != chaincfg.RegressionNetParams.Net {
		return nil, fmt.Errorf("block generation needs regtest, node is %s", r.chainConfig.Name)
	}
	return r.client.GenerateToAddress(numBlocks, coinbase, nil)
}
