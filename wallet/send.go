package wallet

import (
	"context"
	"math/big"
	"sync/atomic"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/multiwallet/btcman/assembler"
	"github.com/TEENet-io/multiwallet/btcman/utils"
	"github.com/TEENet-io/multiwallet/btcman/utxo"
	"github.com/TEENet-io/multiwallet/confirmations"
	"github.com/TEENet-io/multiwallet/metrics"
	"github.com/TEENet-io/multiwallet/tracked"
	"github.com/TEENet-io/multiwallet/txjournal"
)

// Send transfers amount coins to the destination address.
// See SendInSmallestUnit.
func (h *Handler) Send(ctx context.Context, to string, amount *big.Rat, opts ...TxOption) *tracked.Promise[string] {
	sats, err := utils.ToSmallestUnit(amount, h.chain.Decimals)
	if err != nil {
		return tracked.RejectedWith[string](err)
	}
	return h.SendInSmallestUnit(ctx, to, sats, opts...)
}

// SendInSmallestUnit spends the handler's own utxos, largest first, to
// pay amount to the destination. The returned promise emits
// transactionHash once a provider accepted the transaction and, when
// WaitConfirmations is set, confirmation events until that depth is
// reached. It resolves with the transaction id.
func (h *Handler) SendInSmallestUnit(ctx context.Context, to string, amount int64, opts ...TxOption) *tracked.Promise[string] {
	o := newTxOptions(opts)
	o.Address = h.address

	p := tracked.New[string]()
	for _, fn := range o.listeners {
		fn(p)
	}
	if amount <= 0 {
		p.Reject(assembler.ErrInvalidAmount)
		return p
	}

	s := &sendRun{
		h:      h,
		p:      p,
		to:     to,
		amount: amount,
		opts:   o,
		log: logger.WithFields(logger.Fields{
			"asset":  h.chain.Asset,
			"to":     to,
			"amount": amount,
		}),
	}
	go s.run(ctx)
	return p
}

// sendRun is the state of one send.
type sendRun struct {
	h      *Handler
	p      *tracked.Promise[string]
	to     string
	amount int64
	opts   TxOptions
	log    *logger.Entry

	journalID string
	settled   atomic.Bool
}

func (s *sendRun) run(ctx context.Context) {
	// journal writes outlive a cancelled send
	jctx := context.WithoutCancel(ctx)

	id, err := s.h.cfg.journal.Open(jctx, txjournal.Entry{
		Asset:   string(s.h.chain.Asset),
		Network: string(s.h.chain.Network),
		From:    s.h.address,
		To:      s.to,
		Amount:  s.amount,
		Fee:     s.opts.Fee,
	})
	if err != nil {
		s.log.Warnf("cannot journal send: %v", err)
	}
	s.journalID = id

	if s.opts.WaitConfirmations < 0 {
		s.fail(jctx, ErrInvalidConfirmations)
		return
	}

	signed, err := s.h.prepare(ctx, s.to, s.amount, s.opts)
	if err != nil {
		s.fail(jctx, err)
		return
	}

	txID, err := s.h.broadcast(ctx, signed.Hex())
	if err != nil {
		s.fail(jctx, err)
		return
	}
	if txID != signed.TxID {
		s.log.Warnf("provider returned txid %s, built %s", txID, signed.TxID)
	}

	if s.journalID != "" {
		if err := s.h.cfg.journal.MarkBroadcast(jctx, s.journalID, txID); err != nil {
			s.log.Warnf("cannot journal broadcast: %v", err)
		}
	}
	metrics.Send(string(s.h.chain.Asset), metrics.OUTCOME_SUCCESS)
	s.log.WithField("txid", txID).Info("transaction broadcast")

	s.p.EmitTransactionHash(txID)
	if s.opts.WaitConfirmations == 0 {
		s.resolve(txID)
		return
	}
	s.waitConfirmations(ctx, jctx, txID)
}

func (s *sendRun) waitConfirmations(ctx context.Context, jctx context.Context, txID string) {
	want := s.opts.WaitConfirmations
	s.p.OnConfirmation(func(n int64) {
		if n < want || !s.settled.CompareAndSwap(false, true) {
			return
		}
		if s.journalID != "" {
			if err := s.h.cfg.journal.MarkConfirmed(jctx, s.journalID, n); err != nil {
				s.log.Warnf("cannot journal confirmation: %v", err)
			}
		}
		s.p.Resolve(txID)
	})

	sub := confirmations.Subscribe(ctx, s.p, s.settled.Load,
		func(ctx context.Context) (int64, error) {
			return s.h.fetchConfirmations(ctx, txID)
		},
		confirmations.WithInterval(s.h.cfg.pollInterval),
		confirmations.WithMaxPolls(s.h.cfg.maxPolls),
	)

	select {
	case <-s.p.Done():
		sub.Stop()
	case <-sub.Done():
		// polling ended with the send still pending
		err := ctx.Err()
		if err == nil {
			err = ErrConfirmationTimeout
		}
		s.fail(jctx, err)
	}
}

func (s *sendRun) resolve(txID string) {
	if s.settled.CompareAndSwap(false, true) {
		s.p.Resolve(txID)
	}
}

func (s *sendRun) fail(jctx context.Context, err error) {
	if !s.settled.CompareAndSwap(false, true) {
		return
	}
	if s.journalID != "" {
		if jerr := s.h.cfg.journal.MarkFailed(jctx, s.journalID, err); jerr != nil {
			s.log.Warnf("cannot journal failure: %v", jerr)
		}
	}
	metrics.Send(string(s.h.chain.Asset), metrics.OUTCOME_FAILURE)
	s.log.Errorf("send failed: %v", err)
	s.p.Reject(err)
}

// prepare fetches utxos, selects inputs and signs the transaction.
func (h *Handler) prepare(ctx context.Context, to string, amount int64, o TxOptions) (*assembler.SignedTx, error) {
	if !h.chain.CanSign() {
		return nil, assembler.ErrUnsupportedChain
	}
	if o.Fee < 0 {
		return nil, assembler.ErrInvalidFee
	}

	utxos, err := h.fetchUTXOs(ctx, o)
	if err != nil {
		return nil, err
	}

	req := assembler.BuildRequest{
		Destination:   to,
		Amount:        amount,
		ChangeAddress: h.address,
		Fee:           o.Fee,
		SubtractFee:   o.SubtractFee,
	}
	chosen, total := utxo.SelectUtxo(utxos, req.Required())
	req.Inputs = chosen
	logger.WithFields(logger.Fields{
		"asset":    h.chain.Asset,
		"inputs":   len(chosen),
		"total":    total,
		"required": req.Required(),
	}).Debug("selected utxos")

	return h.builder.Build(req)
}
