package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/TEENet-io/multiwallet/btcman/utils"
	"github.com/TEENet-io/multiwallet/btcman/utxo"
	"github.com/TEENet-io/multiwallet/explorer"
)

var (
	errProviderDown = errors.New("provider down")
	errRejected     = fmt.Errorf("%w: bad-txns-inputs-missingorspent", explorer.ErrRejected)
)

// fakeProvider serves canned answers and counts calls.
type fakeProvider struct {
	name string

	mu            sync.Mutex
	utxos         []utxo.UTXO
	failUTXOs     int // fail this many FetchUTXOs calls first
	confirmations []int64
	confErr       error
	broadcastErr  error
	broadcasts    []string
	calls         map[string]int
}

var _ explorer.Provider = (*fakeProvider)(nil)

func newFakeProvider(name string, amounts ...int64) *fakeProvider {
	f := &fakeProvider{name: name, calls: make(map[string]int)}
	for i, amount := range amounts {
		hash := chainhash.DoubleHashH([]byte{byte(i), 0x5a})
		f.utxos = append(f.utxos, utxo.UTXO{
			TxID:          hash.String(),
			TxHash:        &hash,
			Vout:          uint32(i),
			Amount:        amount,
			Confirmations: int64(i + 1),
		})
	}
	return f
}

func (f *fakeProvider) Name() string {
	return f.name
}

func (f *fakeProvider) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeProvider) FetchUTXOs(ctx context.Context, address string, minConfirmations int64) ([]utxo.UTXO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["utxos"]++
	if f.failUTXOs > 0 {
		f.failUTXOs--
		return nil, errProviderDown
	}
	if f.utxos == nil {
		return nil, errProviderDown
	}
	return utxo.FilterByConfirmations(f.utxos, minConfirmations), nil
}

// FetchConfirmations walks through the configured answers, repeating
// the last one.
func (f *fakeProvider) FetchConfirmations(ctx context.Context, txID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["confirmations"]++
	if f.confErr != nil {
		return 0, f.confErr
	}
	if len(f.confirmations) == 0 {
		return 0, nil
	}
	n := f.confirmations[0]
	if len(f.confirmations) > 1 {
		f.confirmations = f.confirmations[1:]
	}
	return n, nil
}

func (f *fakeProvider) BroadcastTransaction(ctx context.Context, signedTxHex string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["broadcast"]++
	if f.broadcastErr != nil {
		return "", f.broadcastErr
	}
	f.broadcasts = append(f.broadcasts, signedTxHex)
	return utils.TxIDFromHex(signedTxHex)
}

func (f *fakeProvider) lastBroadcast() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.broadcasts) == 0 {
		return ""
	}
	return f.broadcasts[len(f.broadcasts)-1]
}

func satoshis(btc float64) int64 {
	amt, _ := btcutil.NewAmount(btc)
	return int64(amt)
}
