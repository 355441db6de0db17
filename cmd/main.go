package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"orderplanner/cmd/pricehistory"
	"orderplanner/src/connectors"
	"orderplanner/src/controller"
	"orderplanner/src/database"
	"orderplanner/src/execute"
	"orderplanner/src/model"
	"orderplanner/src/plan"
	"orderplanner/src/repository"
	"orderplanner/src/rules"
	"orderplanner/src/security"
	"orderplanner/src/validate"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "orderplanner"
	app.Usage = "Validate, plan, and execute futures order strategies"

	app.Commands = []cli.Command{
		marketOrderCMD,
		limitOrderCMD,
		stopLimitOrderCMD,
		twapOrderCMD,
		gridOrderCMD,
		ocoOrderCMD,
		checkBalanceCMD,
		checkConnectionCMD,
		priceHistoryCMD,
		watchPriceCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	symbolFlag = cli.StringFlag{Name: "symbol", Usage: "contract symbol, e.g. BTCUSDT", Required: true}
	sideFlag   = cli.StringFlag{Name: "side", Usage: "BUY or SELL", Required: true}

	marketOrderCMD = cli.Command{
		Name:   "market-order",
		Usage:  "place a market order",
		Action: marketOrderAction,
		Flags: []cli.Flag{
			symbolFlag,
			sideFlag,
			cli.StringFlag{Name: "quantity", Usage: "order quantity", Required: true},
		},
	}
	limitOrderCMD = cli.Command{
		Name:   "limit-order",
		Usage:  "place a limit order",
		Action: limitOrderAction,
		Flags: []cli.Flag{
			symbolFlag,
			sideFlag,
			cli.StringFlag{Name: "quantity", Usage: "order quantity", Required: true},
			cli.StringFlag{Name: "price", Usage: "limit price", Required: true},
		},
	}
	stopLimitOrderCMD = cli.Command{
		Name:   "stop-limit-order",
		Usage:  "place a stop-limit order",
		Action: stopLimitOrderAction,
		Flags: []cli.Flag{
			symbolFlag,
			sideFlag,
			cli.StringFlag{Name: "quantity", Usage: "order quantity", Required: true},
			cli.StringFlag{Name: "stop-price", Usage: "trigger price", Required: true},
			cli.StringFlag{Name: "limit-price", Usage: "limit price once triggered", Required: true},
		},
	}
	twapOrderCMD = cli.Command{
		Name:   "twap-order",
		Usage:  "split a quantity into timed market orders",
		Action: twapOrderAction,
		Flags: []cli.Flag{
			symbolFlag,
			sideFlag,
			cli.StringFlag{Name: "total-quantity", Usage: "total quantity to execute", Required: true},
			cli.IntFlag{Name: "num-intervals", Usage: "number of slices", Required: true},
			cli.IntFlag{Name: "interval-seconds", Usage: "seconds between slices", Required: true},
		},
	}
	gridOrderCMD = cli.Command{
		Name:   "grid-order",
		Usage:  "lay a ladder of limit orders across a price range",
		Action: gridOrderAction,
		Flags: []cli.Flag{
			symbolFlag,
			cli.StringFlag{Name: "min-price", Usage: "bottom of the range", Required: true},
			cli.StringFlag{Name: "max-price", Usage: "top of the range", Required: true},
			cli.IntFlag{Name: "num-buy-orders", Usage: "number of buy legs", Required: true},
			cli.IntFlag{Name: "num-sell-orders", Usage: "number of sell legs", Required: true},
			cli.StringFlag{Name: "quantity-per-order", Usage: "quantity of each leg", Required: true},
		},
	}
	ocoOrderCMD = cli.Command{
		Name:   "oco-order",
		Usage:  "place a stop-market plus take-profit pair",
		Action: ocoOrderAction,
		Flags: []cli.Flag{
			symbolFlag,
			sideFlag,
			cli.StringFlag{Name: "quantity", Usage: "order quantity", Required: true},
			cli.StringFlag{Name: "stop-price", Usage: "stop-market trigger", Required: true},
			cli.StringFlag{Name: "take-profit-price", Usage: "take-profit trigger", Required: true},
		},
	}
	checkBalanceCMD = cli.Command{
		Name:   "check-balance",
		Usage:  "print assets with a positive futures balance",
		Action: checkBalanceAction,
	}
	checkConnectionCMD = cli.Command{
		Name:   "check-connection",
		Usage:  "verify connectivity, clock drift, and credentials",
		Action: checkConnectionAction,
	}
	priceHistoryCMD = cli.Command{
		Name:   "price-history",
		Usage:  "print the recent time-weighted average price",
		Action: priceHistoryAction,
		Flags: []cli.Flag{
			symbolFlag,
			cli.StringFlag{Name: "period", Usage: "candle period: 1m or 1h"},
			cli.IntFlag{Name: "limit", Usage: "number of candles"},
		},
	}
	watchPriceCMD = cli.Command{
		Name:   "watch-price",
		Usage:  "stream the live mark price until interrupted",
		Action: watchPriceAction,
		Flags:  []cli.Flag{symbolFlag},
	}
)

// newVenueClient builds the Binance client, decrypting stored credentials
// when a credentials key is configured.
func newVenueClient() *connectors.Client {
	cfg := connectors.GetConfig()
	apiKey, apiSecret := cfg.APIKey, cfg.APISecret

	if key := security.GetConfig().ExchangeCredentialsKey; key != "" {
		var err error
		if apiKey, err = security.DecryptString(cfg.APIKey, key); err != nil {
			logrus.WithError(err).Fatal("Failed to decrypt API key")
		}
		if apiSecret, err = security.DecryptString(cfg.APISecret, key); err != nil {
			logrus.WithError(err).Fatal("Failed to decrypt API secret")
		}
	}

	return connectors.NewClient(apiKey, apiSecret, cfg.BaseURL)
}

// newOrderController wires the full trading flow. The journal is best
// effort: a broken database disables journaling instead of blocking trading.
func newOrderController() *controller.OrderController {
	client := newVenueClient()

	var journal controller.EventJournal
	var recorder execute.OutcomeRecorder
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Warn("Journal unavailable, running without it")
	} else {
		repo := repository.NewEventRepository()
		journal = repo
		recorder = controller.NewSubmissionRecorder(repo)
	}

	ruleRepo := rules.NewRepository(client)
	return controller.NewOrderController(
		ruleRepo,
		validate.NewValidator(ruleRepo, client),
		plan.NewPlanner(),
		execute.NewCoordinator(client, recorder),
		journal,
	)
}

func parseDecimalFlag(c *cli.Context, name string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.String(name))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid --%s %q: %w", name, c.String(name), err)
	}
	return d, nil
}

func placeOrder(req *model.OrderRequest) error {
	report, err := newOrderController().PlaceOrder(context.Background(), req)
	if err != nil {
		return err
	}
	printReport(report)
	if report.Status == model.StatusRejected {
		return cli.NewExitError("", 2)
	}
	return nil
}

func printReport(report *model.ExecutionReport) {
	fmt.Printf("%s %s: %s\n", report.Symbol, report.Kind, report.Status)
	for _, reason := range report.Reasons {
		fmt.Printf("  rejected [%s]: %s\n", reason.Code, reason.Detail)
	}
	for _, outcome := range report.Outcomes {
		if outcome.Failed() {
			fmt.Printf("  leg %d %s %s: FAILED %s\n",
				outcome.Index, outcome.Item.Kind, outcome.Item.Side, outcome.FailReason)
			continue
		}
		fmt.Printf("  leg %d %s %s: %s orderId=%d\n",
			outcome.Index, outcome.Item.Kind, outcome.Item.Side,
			outcome.Result.Status, outcome.Result.OrderID)
	}
}

func marketOrderAction(c *cli.Context) error {
	quantity, err := parseDecimalFlag(c, "quantity")
	if err != nil {
		return err
	}
	return placeOrder(&model.OrderRequest{
		Symbol:   c.String("symbol"),
		Side:     model.Side(c.String("side")),
		Kind:     model.KindMarket,
		Quantity: quantity,
	})
}

func limitOrderAction(c *cli.Context) error {
	quantity, err := parseDecimalFlag(c, "quantity")
	if err != nil {
		return err
	}
	price, err := parseDecimalFlag(c, "price")
	if err != nil {
		return err
	}
	return placeOrder(&model.OrderRequest{
		Symbol:   c.String("symbol"),
		Side:     model.Side(c.String("side")),
		Kind:     model.KindLimit,
		Quantity: quantity,
		Price:    price,
	})
}

func stopLimitOrderAction(c *cli.Context) error {
	quantity, err := parseDecimalFlag(c, "quantity")
	if err != nil {
		return err
	}
	stopPrice, err := parseDecimalFlag(c, "stop-price")
	if err != nil {
		return err
	}
	limitPrice, err := parseDecimalFlag(c, "limit-price")
	if err != nil {
		return err
	}
	return placeOrder(&model.OrderRequest{
		Symbol:     c.String("symbol"),
		Side:       model.Side(c.String("side")),
		Kind:       model.KindStopLimit,
		Quantity:   quantity,
		StopPrice:  stopPrice,
		LimitPrice: limitPrice,
	})
}

func twapOrderAction(c *cli.Context) error {
	total, err := parseDecimalFlag(c, "total-quantity")
	if err != nil {
		return err
	}
	return placeOrder(&model.OrderRequest{
		Symbol:          c.String("symbol"),
		Side:            model.Side(c.String("side")),
		Kind:            model.KindTWAP,
		TotalQuantity:   total,
		NumIntervals:    c.Int("num-intervals"),
		IntervalSeconds: c.Int("interval-seconds"),
	})
}

func gridOrderAction(c *cli.Context) error {
	minPrice, err := parseDecimalFlag(c, "min-price")
	if err != nil {
		return err
	}
	maxPrice, err := parseDecimalFlag(c, "max-price")
	if err != nil {
		return err
	}
	perOrder, err := parseDecimalFlag(c, "quantity-per-order")
	if err != nil {
		return err
	}
	return placeOrder(&model.OrderRequest{
		Symbol:           c.String("symbol"),
		Side:             model.SideBuy,
		Kind:             model.KindGrid,
		MinPrice:         minPrice,
		MaxPrice:         maxPrice,
		NumBuyOrders:     c.Int("num-buy-orders"),
		NumSellOrders:    c.Int("num-sell-orders"),
		QuantityPerOrder: perOrder,
	})
}

func ocoOrderAction(c *cli.Context) error {
	quantity, err := parseDecimalFlag(c, "quantity")
	if err != nil {
		return err
	}
	stopPrice, err := parseDecimalFlag(c, "stop-price")
	if err != nil {
		return err
	}
	takeProfit, err := parseDecimalFlag(c, "take-profit-price")
	if err != nil {
		return err
	}
	return placeOrder(&model.OrderRequest{
		Symbol:          c.String("symbol"),
		Side:            model.Side(c.String("side")),
		Kind:            model.KindOCO,
		Quantity:        quantity,
		StopPrice:       stopPrice,
		TakeProfitPrice: takeProfit,
	})
}

func checkBalanceAction(_ *cli.Context) error {
	diag := controller.NewDiagnosticsController(newVenueClient())
	return diag.CheckBalance(context.Background())
}

func checkConnectionAction(_ *cli.Context) error {
	diag := controller.NewDiagnosticsController(newVenueClient())
	if err := diag.CheckConnection(context.Background()); err != nil {
		return err
	}
	fmt.Println("connection OK")
	return nil
}

func priceHistoryAction(c *cli.Context) error {
	history := &pricehistory.PriceHistory{
		Log: logrus.WithField("cmd", "price-history"),
	}
	return history.Start(c.String("symbol"), c.String("period"), c.Int("limit"))
}

func watchPriceAction(c *cli.Context) error {
	cfg := connectors.GetConfig()
	symbol := c.String("symbol")
	stream := connectors.NewMarkPriceStream(cfg.WSBaseURL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := make(chan decimal.Decimal)
	go func() {
		for mark := range out {
			fmt.Printf("%s mark price: %s\n", symbol, mark.String())
		}
	}()

	err := stream.Watch(ctx, symbol, out)
	close(out)
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}
