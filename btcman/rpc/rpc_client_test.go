package rpc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/multiwallet/btcman/assembler"
	"github.com/TEENet-io/multiwallet/btcman/utxo"
)

const (
	MAX_BLOCKS = 107 // Generate > 100 blocks to get spendable coinbase on bitcoin core.

	SEND_SATOSHI = 0.1 * 1e8   // 0.1 btc
	FEE_SATOSHI  = 0.001 * 1e8 // 0.001 btc

	// This wallet holds a lot of money.
	// Also the coinbase receiver (block mines and reward goes to this address)
	p1_legacy_priv_key_str = "cNSHjGk52rQ6iya8jdNT9VJ8dvvQ8kPAq5pcFHsYBYdDqahWuneH"
	p1_legacy_addr_str     = "mkVXZnqaaKt4puQNr4ovPHYg48mjguFCnT"

	// Represents a user's wallet
	p2_legacy_addr_str = "moHYHpgk4YgTCeLBmDE2teQ3qVLUtM95Fn"
)

// A regtest node is needed: export SERVER, PORT, USER, PASS.
func setupClient(t *testing.T) *RpcClient {
	server := os.Getenv("SERVER")
	port := os.Getenv("PORT")
	username := os.Getenv("USER")
	password := os.Getenv("PASS")
	if server == "" || port == "" || username == "" || password == "" {
		t.Skip("export env variables first: SERVER, PORT, USER, PASS to run against a regtest node")
	}

	r, err := NewRpcClient(&RpcClientConfig{
		ServerAddr:  server,
		Port:        port,
		Username:    username,
		Pwd:         password,
		ChainConfig: &chaincfg.RegressionNetParams,
	})
	require.NoError(t, err, "cannot create RpcClient with given credentials")
	return r
}

func TestNameAndDefaults(t *testing.T) {
	r, err := NewRpcClient(&RpcClientConfig{ServerAddr: "127.0.0.1", Port: "18443"})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, RPC_NAME, r.Name())
	assert.Equal(t, chaincfg.RegressionNetParams.Name, r.chainConfig.Name)

	_, err = r.FetchUTXOs(context.Background(), "not-an-address", 0)
	assert.Error(t, err)

	_, err = r.FetchConfirmations(context.Background(), "zz")
	assert.Error(t, err)

	_, err = r.BroadcastTransaction(context.Background(), "nothex")
	assert.Error(t, err)
}

func TestIsRejection(t *testing.T) {
	rejected := btcjson.NewRPCError(btcjson.ErrRPCVerifyRejected, "min relay fee not met")
	assert.True(t, isRejection(rejected))
	assert.True(t, isRejection(fmt.Errorf("send: %w", rejected)))
	assert.False(t, isRejection(btcjson.NewRPCError(btcjson.ErrRPCInWarmup, "loading block index")))
	assert.False(t, isRejection(errors.New("connection refused")))
}

func TestRegtestSendRoundTrip(t *testing.T) {
	r := setupClient(t)
	defer r.Close()
	ctx := context.Background()

	bs, err := assembler.NewNativeSigner(p1_legacy_priv_key_str, &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	op, err := assembler.NewNativeOperator(*bs)
	require.NoError(t, err)
	require.Equal(t, p1_legacy_addr_str, op.P2PKH.EncodeAddress())

	require.NoError(t, r.ImportAddress(p1_legacy_addr_str, ""))
	_, err = r.GenerateBlocks(MAX_BLOCKS, op.P2PKH)
	require.NoError(t, err)

	utxos, err := r.FetchUTXOs(ctx, p1_legacy_addr_str, 1)
	require.NoError(t, err)
	require.NotEmpty(t, utxos)

	chosen, _ := utxo.SelectUtxo(utxos, SEND_SATOSHI+FEE_SATOSHI)
	ass := &assembler.Assembler{ChainConfig: &chaincfg.RegressionNetParams, Op: op}
	signed, err := ass.Build(assembler.BuildRequest{
		Destination: p2_legacy_addr_str,
		Amount:      SEND_SATOSHI,
		Fee:         FEE_SATOSHI,
		Inputs:      chosen,
	})
	require.NoError(t, err)

	txID, err := r.BroadcastTransaction(ctx, signed.Hex())
	require.NoError(t, err)
	assert.Equal(t, signed.TxID, txID)

	// a second broadcast of the same tx is not an error
	again, err := r.BroadcastTransaction(ctx, signed.Hex())
	require.NoError(t, err)
	assert.Equal(t, txID, again)

	_, err = r.GenerateBlocks(1, op.P2PKH)
	require.NoError(t, err)
	n, err := r.FetchConfirmations(ctx, txID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}
