package mapper

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"orderplanner/src/model"
)

func TestMapSymbolRules(t *testing.T) {
	info := &model.BinanceSymbolInfo{
		Symbol: "BTCUSDT",
		Status: "TRADING",
		Filters: []model.BinanceSymbolFilter{
			{
				FilterType: model.FilterPriceFilter,
				MinPrice:   "556.80",
				MaxPrice:   "4529764",
				TickSize:   "0.10",
			},
			{
				FilterType: model.FilterLotSize,
				MinQty:     "0.001",
				MaxQty:     "1000",
				StepSize:   "0.001",
			},
			{FilterType: "MARKET_LOT_SIZE", MinQty: "0.001"},
		},
	}

	rules, err := MapSymbolRules(info)
	assert.NoError(t, err)
	assert.Equal(t, "BTCUSDT", rules.Symbol)
	assert.Equal(t, "TRADING", rules.Status)
	assert.True(t, rules.PriceMin.Equal(decimal.RequireFromString("556.8")))
	assert.True(t, rules.TickSize.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, rules.QtyMin.Equal(decimal.RequireFromString("0.001")))
	assert.True(t, rules.QtyMax.Equal(decimal.RequireFromString("1000")))
	assert.True(t, rules.StepSize.Equal(decimal.RequireFromString("0.001")))
}

func TestMapSymbolRulesMissingFilters(t *testing.T) {
	info := &model.BinanceSymbolInfo{
		Symbol: "BTCUSDT",
		Status: "TRADING",
		Filters: []model.BinanceSymbolFilter{
			{FilterType: model.FilterLotSize, MinQty: "0.001", MaxQty: "1000", StepSize: "0.001"},
		},
	}

	_, err := MapSymbolRules(info)
	assert.Error(t, err)
}

func TestMapSymbolRulesMalformedValue(t *testing.T) {
	info := &model.BinanceSymbolInfo{
		Symbol: "BTCUSDT",
		Status: "TRADING",
		Filters: []model.BinanceSymbolFilter{
			{FilterType: model.FilterPriceFilter, MinPrice: "not-a-number", MaxPrice: "100", TickSize: "0.1"},
			{FilterType: model.FilterLotSize, MinQty: "0.001", MaxQty: "1000", StepSize: "0.001"},
		},
	}

	rules, err := MapSymbolRules(info)
	assert.NoError(t, err)
	assert.True(t, rules.PriceMin.IsZero())
	assert.True(t, rules.PriceMax.Equal(decimal.RequireFromString("100")))
}

func TestMapOrderResult(t *testing.T) {
	resp := &model.BinanceOrderResponse{
		OrderID:       123456789,
		Symbol:        "BTCUSDT",
		Status:        "NEW",
		ClientOrderID: "op-6f9619ff-8b86",
		ExecutedQty:   "0.250",
	}

	result := MapOrderResult(resp)
	assert.Equal(t, int64(123456789), result.OrderID)
	assert.Equal(t, "op-6f9619ff-8b86", result.ClientOrderID)
	assert.Equal(t, "NEW", result.Status)
	assert.True(t, result.ExecutedQty.Equal(decimal.RequireFromString("0.25")))
}
