package reporter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/multiwallet/asset"
	"github.com/TEENet-io/multiwallet/btcman/utils"
	"github.com/TEENet-io/multiwallet/btcman/utxo"
	"github.com/TEENet-io/multiwallet/database"
	"github.com/TEENet-io/multiwallet/explorer"
	"github.com/TEENet-io/multiwallet/txjournal"
	"github.com/TEENet-io/multiwallet/wallet"
)

const (
	p1_legacy_priv_key_str = "cNSHjGk52rQ6iya8jdNT9VJ8dvvQ8kPAq5pcFHsYBYdDqahWuneH"
	p1_legacy_addr_str     = "mkVXZnqaaKt4puQNr4ovPHYg48mjguFCnT"
	p2_legacy_addr_str     = "moHYHpgk4YgTCeLBmDE2teQ3qVLUtM95Fn"
)

// stubNode answers like a regtest node holding two outputs.
type stubNode struct {
	mu         sync.Mutex
	broadcasts int
}

func (n *stubNode) Name() string { return "stub" }

func (n *stubNode) FetchUTXOs(ctx context.Context, address string, minConfirmations int64) ([]utxo.UTXO, error) {
	var out []utxo.UTXO
	for i, amount := range []int64{100_000_000, 50_000_000} {
		hash := chainhash.DoubleHashH([]byte{byte(i)})
		out = append(out, utxo.UTXO{TxID: hash.String(), TxHash: &hash, Vout: 0, Amount: amount, Confirmations: 6})
	}
	return out, nil
}

func (n *stubNode) FetchConfirmations(ctx context.Context, txID string) (int64, error) {
	return 0, nil
}

func (n *stubNode) BroadcastTransaction(ctx context.Context, signedTxHex string) (string, error) {
	n.mu.Lock()
	n.broadcasts++
	n.mu.Unlock()
	return utils.TxIDFromHex(signedTxHex)
}

func setupServer(t *testing.T) (*HttpReader, *httptest.Server) {
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	journal, err := txjournal.NewStore(db)
	require.NoError(t, err)

	wif, err := btcutil.DecodeWIF(p1_legacy_priv_key_str)
	require.NoError(t, err)
	acc, err := wallet.NewAccount(wif.PrivKey, wallet.AccountConfig{
		Network: asset.Regtest,
		Providers: asset.ProviderConfig{
			Nodes: map[asset.Asset]explorer.Provider{asset.BTC: &stubNode{}},
		},
		Options: []wallet.Option{wallet.WithJournal(journal)},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewHttpReporter("", "", acc, journal).SetupRouter())
	t.Cleanup(func() {
		srv.Close()
		journal.Close()
		db.Close()
	})
	return NewHttpReaderWithURL(srv.URL, srv.Client()), srv
}

func TestHello(t *testing.T) {
	hr, _ := setupServer(t)
	msg, err := hr.GetHello()
	require.NoError(t, err)
	assert.Equal(t, "world", msg)
}

func TestAddressRoute(t *testing.T) {
	hr, _ := setupServer(t)

	addr, err := hr.GetAddress("bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "BTC", addr.Asset)
	assert.Equal(t, "regtest", addr.Network)
	assert.Equal(t, p1_legacy_addr_str, addr.Address)

	_, err = hr.GetAddress("ether")
	assert.ErrorContains(t, err, "404")
}

func TestBalanceRoute(t *testing.T) {
	hr, srv := setupServer(t)

	b, err := hr.GetBalance("BTC", 1)
	require.NoError(t, err)
	assert.Equal(t, "1.50000000", b.Balance)
	assert.Equal(t, int64(150_000_000), b.Smallest)
	assert.Equal(t, p1_legacy_addr_str, b.Address)

	resp, err := srv.Client().Get(srv.URL + ROUTE_BALANCE)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = srv.Client().Get(srv.URL + ROUTE_BALANCE + "?asset=BTC&confirmations=-2")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendRouteAndJournal(t *testing.T) {
	hr, _ := setupServer(t)

	sent, err := hr.Send(SendRequest{Asset: "btc", To: p2_legacy_addr_str, Amount: "0.1"})
	require.NoError(t, err)
	assert.Len(t, sent.TxID, 64)
	assert.Equal(t, "broadcast", sent.Status)

	tx, err := hr.GetTx(sent.TxID)
	require.NoError(t, err)
	assert.Equal(t, "broadcast", tx.Status)
	assert.Equal(t, int64(10_000_000), tx.Amount)
	assert.Equal(t, int64(wallet.DEFAULT_FEE), tx.Fee)
	assert.Equal(t, p2_legacy_addr_str, tx.To)
}

func TestSendRouteErrors(t *testing.T) {
	hr, _ := setupServer(t)

	_, err := hr.Send(SendRequest{Asset: "BTC", To: p2_legacy_addr_str, Amount: "5"})
	assert.ErrorContains(t, err, "422")
	assert.ErrorContains(t, err, "insufficient funds")

	_, err = hr.Send(SendRequest{Asset: "BTC", To: p2_legacy_addr_str, Amount: "one"})
	assert.ErrorContains(t, err, "400")

	_, err = hr.Send(SendRequest{Asset: "BTC", Amount: "1"})
	assert.ErrorContains(t, err, "400")

	_, err = hr.Send(SendRequest{Asset: "BCH", To: p2_legacy_addr_str, Amount: "1"})
	assert.ErrorContains(t, err, "404")

	_, err = hr.GetTx("ffff")
	assert.ErrorContains(t, err, "404")
}

func TestMetricsRoute(t *testing.T) {
	hr, srv := setupServer(t)
	_, err := hr.GetBalance("BTC", 0)
	require.NoError(t, err)

	resp, err := srv.Client().Get(srv.URL + ROUTE_METRICS)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
