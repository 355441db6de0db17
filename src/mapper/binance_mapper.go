package mapper

import (
	"fmt"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"orderplanner/src/model"
)

// parseDecimalSafe converts a wire string into a decimal, falling back to
// zero on malformed input so one bad field never drops the whole payload.
func parseDecimalSafe(s, field string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		logger.WithFields(logger.Fields{
			"field": field,
			"value": s,
		}).Warn("unparseable decimal in venue payload, using zero")
		return decimal.Zero
	}
	return d
}

// MapSymbolRules extracts the trading constraints from one exchangeInfo
// symbol entry. Both the LOT_SIZE and PRICE_FILTER filters must be present.
func MapSymbolRules(info *model.BinanceSymbolInfo) (*model.SymbolTradingRules, error) {
	rules := &model.SymbolTradingRules{
		Symbol: info.Symbol,
		Status: info.Status,
	}

	var haveLot, havePrice bool
	for _, f := range info.Filters {
		switch f.FilterType {
		case model.FilterLotSize:
			rules.QtyMin = parseDecimalSafe(f.MinQty, "minQty")
			rules.QtyMax = parseDecimalSafe(f.MaxQty, "maxQty")
			rules.StepSize = parseDecimalSafe(f.StepSize, "stepSize")
			haveLot = true
		case model.FilterPriceFilter:
			rules.PriceMin = parseDecimalSafe(f.MinPrice, "minPrice")
			rules.PriceMax = parseDecimalSafe(f.MaxPrice, "maxPrice")
			rules.TickSize = parseDecimalSafe(f.TickSize, "tickSize")
			havePrice = true
		}
	}

	if !haveLot || !havePrice {
		return nil, fmt.Errorf("symbol %s is missing LOT_SIZE or PRICE_FILTER filters", info.Symbol)
	}
	return rules, nil
}

// MapOrderResult converts an order acknowledgement into the domain result.
func MapOrderResult(resp *model.BinanceOrderResponse) *model.OrderResult {
	return &model.OrderResult{
		OrderID:       resp.OrderID,
		ClientOrderID: resp.ClientOrderID,
		Status:        resp.Status,
		ExecutedQty:   parseDecimalSafe(resp.ExecutedQty, "executedQty"),
	}
}
