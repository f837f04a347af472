package explorer

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const SOCHAIN_URL = "https://sochain.test/api/v2"

func TestSochainFetchUTXOs(t *testing.T) {
	mt, client := newMock()
	mt.RegisterResponder("GET", SOCHAIN_URL+"/get_tx_unspent/BTCTEST/"+TEST_ADDR,
		httpmock.NewStringResponder(200, `{"status":"success","data":{"network":"BTCTEST","address":"`+TEST_ADDR+`","txs":[
			{"txid":"`+TEST_TXID+`","output_no":0,"script_hex":"`+P2PKH_HEX+`","value":"0.00010000","confirmations":0},
			{"txid":"`+TEST_TXID+`","output_no":1,"script_hex":"`+P2PKH_HEX+`","value":"1.23456789","confirmations":7}
		]}}`))

	s := NewSochain("sochain", SOCHAIN_URL, "BTCTEST", 8, WithHTTPClient(client))
	utxos, err := s.FetchUTXOs(context.Background(), TEST_ADDR, 0)
	require.NoError(t, err)
	require.Len(t, utxos, 2)
	assert.Equal(t, int64(10000), utxos[0].Amount)
	assert.Equal(t, int64(123456789), utxos[1].Amount)

	utxos, err = s.FetchUTXOs(context.Background(), TEST_ADDR, 7)
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, int64(7), utxos[0].Confirmations)
}

func TestSochainFailStatus(t *testing.T) {
	mt, client := newMock()
	mt.RegisterResponder("GET", SOCHAIN_URL+"/get_tx_unspent/BTCTEST/"+TEST_ADDR,
		httpmock.NewStringResponder(200, `{"status":"fail","data":{"address":"invalid"}}`))

	s := NewSochain("sochain", SOCHAIN_URL, "BTCTEST", 8, WithHTTPClient(client), WithAttempts(1))
	_, err := s.FetchUTXOs(context.Background(), TEST_ADDR, 0)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestSochainBadValue(t *testing.T) {
	mt, client := newMock()
	mt.RegisterResponder("GET", SOCHAIN_URL+"/get_tx_unspent/DOGE/"+TEST_ADDR,
		httpmock.NewStringResponder(200, `{"status":"success","data":{"txs":[{"txid":"`+TEST_TXID+`","output_no":0,"value":"lots"}]}}`))

	s := NewSochain("sochain", SOCHAIN_URL, "DOGE", 8, WithHTTPClient(client), WithAttempts(1))
	_, err := s.FetchUTXOs(context.Background(), TEST_ADDR, 0)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSochainFetchConfirmations(t *testing.T) {
	mt, client := newMock()
	mt.RegisterResponder("GET", SOCHAIN_URL+"/get_tx/ZEC/"+TEST_TXID,
		httpmock.NewStringResponder(200, `{"status":"success","data":{"txid":"`+TEST_TXID+`","confirmations":4}}`))

	s := NewSochain("sochain", SOCHAIN_URL, "ZEC", 8, WithHTTPClient(client))
	n, err := s.FetchConfirmations(context.Background(), TEST_TXID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestSochainBroadcast(t *testing.T) {
	raw, txid := sampleTx(t)
	mt, client := newMock()
	mt.RegisterResponder("POST", SOCHAIN_URL+"/send_tx/BTCTEST",
		httpmock.NewStringResponder(200, `{"status":"success","data":{"network":"BTCTEST","txid":"`+txid+`"}}`))

	s := NewSochain("sochain", SOCHAIN_URL, "BTCTEST", 8, WithHTTPClient(client))
	got, err := s.BroadcastTransaction(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, txid, got)
}

func TestSochainBroadcastAlreadyKnownInFailEnvelope(t *testing.T) {
	raw, txid := sampleTx(t)
	mt, client := newMock()
	mt.RegisterResponder("POST", SOCHAIN_URL+"/send_tx/BTCTEST",
		httpmock.NewStringResponder(200, `{"status":"fail","data":{"tx_hex":"Transaction already in block chain"}}`))

	s := NewSochain("sochain", SOCHAIN_URL, "BTCTEST", 8, WithHTTPClient(client))
	got, err := s.BroadcastTransaction(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, txid, got)
}

func TestSochainBroadcastRejected(t *testing.T) {
	raw, _ := sampleTx(t)
	mt, client := newMock()
	mt.RegisterResponder("POST", SOCHAIN_URL+"/send_tx/BTCTEST",
		httpmock.NewStringResponder(200, `{"status":"fail","data":{"tx_hex":"min relay fee not met"}}`))

	s := NewSochain("sochain", SOCHAIN_URL, "BTCTEST", 8, WithHTTPClient(client))
	_, err := s.BroadcastTransaction(context.Background(), raw)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func TestSochainBroadcastBadRequest(t *testing.T) {
	raw, _ := sampleTx(t)
	mt, client := newMock()
	mt.RegisterResponder("POST", SOCHAIN_URL+"/send_tx/BTCTEST",
		httpmock.NewStringResponder(400, `{"status":"fail","data":{"tx_hex":"64: dust"}}`))

	s := NewSochain("sochain", SOCHAIN_URL, "BTCTEST", 8, WithHTTPClient(client))
	_, err := s.BroadcastTransaction(context.Background(), raw)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}
