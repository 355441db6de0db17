package pricehistory

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

const (
	Duration1m = "1m"
	Duration1h = "1h"
)

// PriceHistory pulls recent candles for a symbol and prints the
// time-weighted average close, a reference price for sizing TWAP runs.
type PriceHistory struct {
	Log      *logger.Entry
	Config   *Config
	exchange goex.API
}

// Start prints the average close over the most recent candles. period and
// limit override the env defaults when non-zero.
func (p *PriceHistory) Start(symbol, period string, limit int) error {
	p.Config = GetConfig()
	if period != "" {
		p.Config.DurationStr = period
	}
	if limit > 0 {
		p.Config.Limit = limit
	}

	if p.exchange == nil {
		p.exchange = newBinanceInstance()
	}

	klines, err := p.fetchKlines(symbol)
	if err != nil {
		return err
	}
	if len(klines) == 0 {
		return errors.New("venue returned no candles")
	}

	var sum decimal.Decimal
	low := decimal.NewFromFloat(klines[0].Low)
	high := decimal.NewFromFloat(klines[0].High)
	for _, k := range klines {
		sum = sum.Add(decimal.NewFromFloat(k.Close))
		if l := decimal.NewFromFloat(k.Low); l.LessThan(low) {
			low = l
		}
		if h := decimal.NewFromFloat(k.High); h.GreaterThan(high) {
			high = h
		}
	}
	average := sum.Div(decimal.NewFromInt(int64(len(klines))))

	p.Log.WithFields(logger.Fields{
		"symbol":  symbol,
		"candles": len(klines),
		"period":  p.Config.DurationStr,
	}).Info("price history fetched")

	fmt.Printf("%s over last %d x %s candles:\n", symbol, len(klines), p.Config.DurationStr)
	fmt.Printf("  average close: %s\n", average.StringFixed(4))
	fmt.Printf("  low:  %s\n", low.String())
	fmt.Printf("  high: %s\n", high.String())
	return nil
}

func newBinanceInstance() *binance.Binance {
	apiConfig := &goex.APIConfig{
		HttpClient: http.DefaultClient,
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	return binance.NewWithConfig(apiConfig)
}

func (p *PriceHistory) fetchKlines(symbol string) ([]goex.Kline, error) {
	base := strings.TrimSuffix(strings.ToUpper(symbol), p.Config.Quote)
	pair := goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: p.Config.Quote})

	klines, err := p.exchange.GetKlineRecords(
		pair,
		p.parseDurationToGoex(),
		p.Config.Limit,
	)
	if err != nil {
		return nil, err
	}
	return klines, nil
}

func (p *PriceHistory) parseDurationToGoex() goex.KlinePeriod {
	var duration goex.KlinePeriod
	switch p.Config.DurationStr {
	case Duration1m:
		duration = goex.KLINE_PERIOD_1MIN
	case Duration1h:
		duration = goex.KLINE_PERIOD_1H
	default:
		panic("invalid DURATION env var")
	}
	return duration
}
