// This is a http type of reporter.
// It serves the wallet's addresses, balances and send journal
// and accepts send requests on the http routes.

package reporter

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/multiwallet/asset"
	"github.com/TEENet-io/multiwallet/btcman/utils"
	"github.com/TEENet-io/multiwallet/tracked"
	"github.com/TEENet-io/multiwallet/txjournal"
	"github.com/TEENet-io/multiwallet/wallet"
)

const (
	ROUTE_HELLO   = "/hello"
	ROUTE_ADDRESS = "/address"
	ROUTE_BALANCE = "/balance"
	ROUTE_SEND    = "/send"
	ROUTE_TX      = "/tx"
	ROUTE_METRICS = "/metrics"

	DEFAULT_SEND_TIMEOUT = 2 * time.Minute
)

type HttpReporter struct {
	serverIP   string // listen ip
	serverPort string // listen port

	account     *wallet.Account
	journal     txjournal.Reader // nil disables ROUTE_TX
	sendTimeout time.Duration    // how long POST /send waits for the tx hash
}

func NewHttpReporter(serverIP string, serverPort string, account *wallet.Account, journal txjournal.Reader) *HttpReporter {
	return &HttpReporter{
		serverIP:    serverIP,
		serverPort:  serverPort,
		account:     account,
		journal:     journal,
		sendTimeout: DEFAULT_SEND_TIMEOUT,
	}
}

// Hook up routes & handlers
func (h *HttpReporter) SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET(ROUTE_HELLO, Hello)
	router.GET(ROUTE_ADDRESS, h.Address)
	router.GET(ROUTE_BALANCE, h.Balance)
	router.POST(ROUTE_SEND, h.Send)
	router.GET(ROUTE_TX, h.Tx)
	router.GET(ROUTE_METRICS, gin.WrapH(promhttp.Handler()))

	return router
}

// Hook up router & ip:port
func (h *HttpReporter) Run() error {
	router := h.SetupRouter()
	address := h.serverIP + ":" + h.serverPort
	logger.WithField("address", address).Info("http reporter listening")
	return router.Run(address)
}

func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "world",
	})
}

func (h *HttpReporter) handler(c *gin.Context) (*wallet.Handler, bool) {
	symbol := c.Query("asset")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asset must be provided"})
		return nil, false
	}
	hd, err := h.account.HandlerFor(symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return hd, true
}

func (h *HttpReporter) Address(c *gin.Context) {
	hd, ok := h.handler(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, AddressResponse{
		Asset:   string(hd.Chain().Asset),
		Network: string(hd.Chain().Network),
		Address: hd.Address(),
	})
}

func (h *HttpReporter) Balance(c *gin.Context) {
	hd, ok := h.handler(c)
	if !ok {
		return
	}

	opts := []wallet.TxOption{wallet.FromAddress(c.Query("address"))}
	if s := c.Query("confirmations"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "confirmations must be a non-negative integer"})
			return
		}
		opts = append(opts, wallet.MinConfirmations(n))
	}

	sats, err := hd.GetBalanceInSmallestUnit(c.Request.Context(), opts...)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	address := c.Query("address")
	if address == "" {
		address = hd.Address()
	}
	c.JSON(http.StatusOK, BalanceResponse{
		Asset:    string(hd.Chain().Asset),
		Address:  address,
		Balance:  utils.FormatUnits(sats, hd.Chain().Decimals),
		Smallest: sats,
	})
}

// Send starts a transfer and replies once the transaction hash is known
// or the send failed. Waiting for confirmations, if asked for,
// continues after the reply and is visible on ROUTE_TX.
func (h *HttpReporter) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hd, err := h.account.HandlerFor(req.Asset)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	amount, err := utils.ParseDecimal(req.Amount, hd.Chain().Decimals)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashCh := make(chan string, 1)
	opts := []wallet.TxOption{
		wallet.WaitConfirmations(req.WaitConfirmations),
		wallet.WithListeners(func(p *tracked.Promise[string]) {
			p.OnTransactionHash(func(txHash string) {
				hashCh <- txHash
			})
		}),
	}
	if req.Fee != nil {
		opts = append(opts, wallet.WithFee(*req.Fee))
	}
	if req.SubtractFee {
		opts = append(opts, wallet.SubtractFee())
	}

	// the send outlives the request when it waits for confirmations
	p := hd.SendInSmallestUnit(context.WithoutCancel(c.Request.Context()), req.To, amount, opts...)

	timer := time.NewTimer(h.sendTimeout)
	defer timer.Stop()
	select {
	case txHash := <-hashCh:
		c.JSON(http.StatusOK, SendResponse{TxID: txHash, Status: string(txjournal.STATUS_BROADCAST)})
	case <-p.Done():
		txHash, _, err := p.Result()
		if err != nil {
			c.JSON(statusOf(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, SendResponse{TxID: txHash, Status: string(txjournal.STATUS_BROADCAST)})
	case <-timer.C:
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "send is still in progress"})
	case <-c.Request.Context().Done():
	}
}

func (h *HttpReporter) Tx(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "journal is disabled"})
		return
	}
	id := c.Query("id")
	txID := c.Query("tx_id")
	if id == "" && txID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either id or tx_id must be provided"})
		return
	}

	var (
		e   *txjournal.Entry
		err error
	)
	if id != "" {
		e, err = h.journal.Get(c.Request.Context(), id)
	} else {
		e, err = h.journal.GetByTxID(c.Request.Context(), txID)
	}
	if err != nil {
		if errors.Is(err, txjournal.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": NewTxResponse(e)})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, utils.ErrInvalidAmount),
		errors.Is(err, wallet.ErrInvalidConfirmations),
		errors.Is(err, asset.ErrUnknownAsset):
		return http.StatusBadRequest
	case isClientError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
