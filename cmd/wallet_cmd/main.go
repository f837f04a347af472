// Command wallet_cmd is the multi-asset wallet command line tool.
//
// Configuration comes from the environment (WALLET_*, BTC_RPC_*) and,
// optionally, from the file named by WALLET_CONFIG.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/TEENet-io/multiwallet/asset"
	"github.com/TEENet-io/multiwallet/btcman/utils"
	"github.com/TEENet-io/multiwallet/cmd"
	"github.com/TEENet-io/multiwallet/keys"
	"github.com/TEENet-io/multiwallet/logconfig"
	"github.com/TEENet-io/multiwallet/reporter"
	"github.com/TEENet-io/multiwallet/tracked"
	"github.com/TEENet-io/multiwallet/txjournal"
	"github.com/TEENet-io/multiwallet/wallet"
)

func main() {
	app := &cli.App{
		Name:  "wallet",
		Usage: "Balances and transfers of BTC, BCH, ZEC and DOGE from one key",
		Commands: []*cli.Command{
			{
				Name:   "address",
				Usage:  "Print the wallet address of every enabled asset",
				Action: withUser(address),
				Flags:  []cli.Flag{assetFlag(false)},
			},
			{
				Name:   "balance",
				Usage:  "Print balances",
				Action: withUser(balance),
				Flags: []cli.Flag{
					assetFlag(false),
					&cli.Int64Flag{Name: "confirmations", Usage: "count only outputs with this many confirmations"},
				},
			},
			{
				Name:   "send",
				Usage:  "Send coins to an address",
				Action: withUser(send),
				Flags: []cli.Flag{
					assetFlag(true),
					&cli.StringFlag{Name: "to", Usage: "destination address", Required: true},
					&cli.StringFlag{Name: "amount", Usage: "amount in coins, e.g. 0.001", Required: true},
					&cli.Int64Flag{Name: "fee", Usage: "absolute fee in the smallest unit", Value: wallet.DEFAULT_FEE},
					&cli.BoolFlag{Name: "subtract-fee", Usage: "take the fee out of the amount"},
					&cli.Int64Flag{Name: "confirmations", Usage: "spend only outputs with this many confirmations"},
					&cli.Int64Flag{Name: "wait", Usage: "wait until the transaction has this many confirmations"},
				},
			},
			{
				Name:   "history",
				Usage:  "List journaled sends",
				Action: withUser(history),
				Flags: []cli.Flag{
					assetFlag(false),
					&cli.IntFlag{Name: "limit", Value: 20},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the http api",
				Action: withUser(serve),
			},
			{
				Name:   "mine",
				Usage:  "Mine blocks to the wallet's BTC address (regtest node only)",
				Action: withUser(mine),
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "blocks", Value: cmd.REGTEST_GENERATE_BLOCKS},
				},
			},
			{
				Name:   "newkey",
				Usage:  "Generate a new private key or mnemonic",
				Action: newKey,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "mnemonic", Usage: "generate a 24 word mnemonic instead of a WIF key"},
					&cli.StringFlag{Name: "network", Value: string(asset.Testnet)},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func assetFlag(required bool) cli.Flag {
	return &cli.StringFlag{Name: "asset", Aliases: []string{"a"}, Usage: "BTC, BCH, ZEC or DOGE", Required: required}
}

type userAction func(c *cli.Context, ctx context.Context, wu *cmd.WalletUser) error

// withUser loads the configuration, builds the wallet and cancels the
// action's context on SIGINT / SIGTERM.
func withUser(action userAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := cmd.InitializeViper(); err != nil {
			return err
		}
		wc, err := cmd.PrepareWalletConfig()
		if err != nil {
			return err
		}
		logconfig.ConfigLogger(wc.LogLevel)

		wu, err := cmd.NewWalletUser(wc, wc.Network == asset.Regtest)
		if err != nil {
			return err
		}
		defer wu.Close()

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return action(c, ctx, wu)
	}
}

func selectedAssets(c *cli.Context, wu *cmd.WalletUser) ([]asset.Asset, error) {
	if !c.IsSet("asset") {
		return wu.Account.Assets(), nil
	}
	a, err := asset.Parse(c.String("asset"))
	if err != nil {
		return nil, err
	}
	return []asset.Asset{a}, nil
}

func address(c *cli.Context, ctx context.Context, wu *cmd.WalletUser) error {
	assets, err := selectedAssets(c, wu)
	if err != nil {
		return err
	}
	for _, a := range assets {
		h, err := wu.Account.Handler(a)
		if err != nil {
			return err
		}
		fmt.Printf("%-5s %s\n", a, h.Address())
	}
	return nil
}

func balance(c *cli.Context, ctx context.Context, wu *cmd.WalletUser) error {
	assets, err := selectedAssets(c, wu)
	if err != nil {
		return err
	}
	if c.IsSet("confirmations") {
		for _, a := range assets {
			h, err := wu.Account.Handler(a)
			if err != nil {
				return err
			}
			b, err := h.GetBalance(ctx, wallet.MinConfirmations(c.Int64("confirmations")))
			if err != nil {
				fmt.Printf("%-5s error: %v\n", a, err)
				continue
			}
			fmt.Printf("%-5s %s\n", a, b.FloatString(h.Chain().Decimals))
		}
		return nil
	}
	balances, err := wu.Account.Balances(ctx, assets...)
	for _, b := range balances {
		if b.Err != nil {
			fmt.Printf("%-5s error: %v\n", b.Asset, b.Err)
			continue
		}
		fmt.Printf("%-5s %s\n", b.Asset, b.Amount.FloatString(asset.DECIMALS))
	}
	return err
}

func send(c *cli.Context, ctx context.Context, wu *cmd.WalletUser) error {
	h, err := wu.Account.HandlerFor(c.String("asset"))
	if err != nil {
		return err
	}
	amount, err := utils.ParseDecimal(c.String("amount"), h.Chain().Decimals)
	if err != nil {
		return err
	}

	opts := []wallet.TxOption{
		wallet.WithFee(c.Int64("fee")),
		wallet.MinConfirmations(c.Int64("confirmations")),
		wallet.WaitConfirmations(c.Int64("wait")),
		wallet.WithListeners(func(p *tracked.Promise[string]) {
			p.OnTransactionHash(func(txHash string) {
				fmt.Printf("transaction hash: %s\n", txHash)
			})
			p.OnConfirmation(func(n int64) {
				fmt.Printf("confirmations: %d\n", n)
			})
		}),
	}
	if c.Bool("subtract-fee") {
		opts = append(opts, wallet.SubtractFee())
	}

	txID, err := h.SendInSmallestUnit(ctx, c.String("to"), amount, opts...).Await(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("sent %s %s to %s in %s\n", utils.FormatUnits(amount, h.Chain().Decimals), h.Chain().Asset, c.String("to"), txID)
	return nil
}

func history(c *cli.Context, ctx context.Context, wu *cmd.WalletUser) error {
	if wu.Journal == nil {
		return fmt.Errorf("no journal configured, set %s", cmd.KEY_JOURNAL_DB)
	}
	filter := ""
	if c.IsSet("asset") {
		a, err := asset.Parse(c.String("asset"))
		if err != nil {
			return err
		}
		filter = string(a)
	}
	entries, err := wu.Journal.List(ctx, filter, c.Int("limit"))
	if err != nil {
		return err
	}
	fmt.Println(strings.Repeat("=", 30))
	for _, e := range entries {
		fmt.Printf("%s %-5s %-9s %s -> %s %s txid=%s conf=%d %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Asset, e.Status,
			e.From, e.To, utils.FormatUnits(e.Amount, asset.DECIMALS), e.TxID, e.Confirmations, e.Error)
	}
	return nil
}

func serve(c *cli.Context, ctx context.Context, wu *cmd.WalletUser) error {
	var journal txjournal.Reader
	if wu.Journal != nil {
		journal = wu.Journal
	}
	rep := reporter.NewHttpReporter(wu.Config.HttpIp, wu.Config.HttpPort, wu.Account, journal)

	errCh := make(chan error, 1)
	go func() { errCh <- rep.Run() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		fmt.Println("\nReceived interrupt signal, shutting down...")
		return nil
	}
}

func mine(c *cli.Context, ctx context.Context, wu *cmd.WalletUser) error {
	blocks, err := wu.MineEnoughBlocks(c.Int64("blocks"))
	if err != nil {
		return err
	}
	fmt.Printf("Mined %d blocks\n", len(blocks))
	return nil
}

func newKey(c *cli.Context) error {
	if c.Bool("mnemonic") {
		m, err := keys.NewMnemonic()
		if err != nil {
			return err
		}
		fmt.Println(m)
		return nil
	}
	chain, err := asset.NewChain(asset.BTC, asset.ParseNetwork(c.String("network")))
	if err != nil {
		return err
	}
	wif, err := keys.NewPrivateKey(chain.Params)
	if err != nil {
		return err
	}
	fmt.Println(wif)
	return nil
}
