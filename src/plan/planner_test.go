package plan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"orderplanner/src/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testRules() *model.SymbolTradingRules {
	return &model.SymbolTradingRules{
		Symbol:   "BTCUSDT",
		Status:   model.StatusTrading,
		PriceMin: dec("0.1"),
		PriceMax: dec("1000000"),
		TickSize: dec("0.1"),
		QtyMin:   dec("0.001"),
		QtyMax:   dec("1000"),
		StepSize: dec("0.001"),
	}
}

func prices(items []model.OrderPlanItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Price.String()
	}
	return out
}

func TestPlanMarket(t *testing.T) {
	p := NewPlanner()
	plan, err := p.Plan(&model.OrderRequest{
		Symbol: "BTCUSDT", Side: model.SideBuy, Kind: model.KindMarket, Quantity: dec("0.5"),
	}, testRules())
	assert.NoError(t, err)
	assert.Len(t, plan.Items, 1)
	assert.Equal(t, model.ItemMarket, plan.Items[0].Kind)
	assert.Equal(t, model.AbortOnFirstFailure, plan.Policy)
}

func TestPlanStopLimit(t *testing.T) {
	p := NewPlanner()
	plan, err := p.Plan(&model.OrderRequest{
		Symbol: "BTCUSDT", Side: model.SideSell, Kind: model.KindStopLimit,
		Quantity: dec("1"), StopPrice: dec("95"), LimitPrice: dec("94.5"),
	}, testRules())
	assert.NoError(t, err)
	assert.Len(t, plan.Items, 1)
	item := plan.Items[0]
	assert.Equal(t, model.ItemStopTriggerLimit, item.Kind)
	assert.True(t, item.TriggerPrice.Equal(dec("95")))
	assert.True(t, item.Price.Equal(dec("94.5")))
}

func TestPlanGrid(t *testing.T) {
	p := NewPlanner()
	plan, err := p.Plan(&model.OrderRequest{
		Symbol: "BTCUSDT", Side: model.SideBuy, Kind: model.KindGrid,
		MinPrice: dec("100"), MaxPrice: dec("110"),
		NumBuyOrders: 3, NumSellOrders: 3,
		QuantityPerOrder: dec("0.01"),
	}, testRules())
	assert.NoError(t, err)
	assert.Len(t, plan.Items, 6)
	assert.Equal(t, model.ContinueAndCollect, plan.Policy)
	assert.Empty(t, plan.Warnings)

	assert.Equal(t, []string{"100", "102", "104", "110", "108", "106"}, prices(plan.Items))
	for i, it := range plan.Items {
		want := model.SideBuy
		if i >= 3 {
			want = model.SideSell
		}
		assert.Equal(t, want, it.Side)
		assert.Equal(t, model.ItemLimit, it.Kind)
		assert.True(t, it.Quantity.Equal(dec("0.01")))
	}
}

func TestPlanGridInsufficientLegs(t *testing.T) {
	p := NewPlanner()
	_, err := p.Plan(&model.OrderRequest{
		Symbol: "BTCUSDT", Side: model.SideBuy, Kind: model.KindGrid,
		MinPrice: dec("100"), MaxPrice: dec("110"),
		NumBuyOrders: 3, NumSellOrders: 0,
		QuantityPerOrder: dec("0.01"),
	}, testRules())

	var pe *model.PlanningError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, model.CodeInsufficientLegs, pe.Code)
}

func TestPlanGridDegenerateRange(t *testing.T) {
	p := NewPlanner()
	// 0.3 spread over 9 gaps gives spacing below the 0.1 tick.
	_, err := p.Plan(&model.OrderRequest{
		Symbol: "BTCUSDT", Side: model.SideBuy, Kind: model.KindGrid,
		MinPrice: dec("100"), MaxPrice: dec("100.3"),
		NumBuyOrders: 5, NumSellOrders: 5,
		QuantityPerOrder: dec("0.01"),
	}, testRules())

	var pe *model.PlanningError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, model.CodeDegenerateRange, pe.Code)
}

func TestPlanGridUnevenCounts(t *testing.T) {
	p := NewPlanner()
	plan, err := p.Plan(&model.OrderRequest{
		Symbol: "BTCUSDT", Side: model.SideBuy, Kind: model.KindGrid,
		MinPrice: dec("100"), MaxPrice: dec("110"),
		NumBuyOrders: 3, NumSellOrders: 1,
		QuantityPerOrder: dec("0.01"),
	}, testRules())
	assert.NoError(t, err)

	// 3 gaps over the range: buys at 100, 103.3, 106.7; single sell at 110.
	assert.Equal(t, []string{"100", "103.3", "106.7", "110"}, prices(plan.Items))
	assert.Empty(t, plan.Warnings)
}

func TestPlanTWAP(t *testing.T) {
	p := NewPlanner()
	plan, err := p.Plan(&model.OrderRequest{
		Symbol: "BTCUSDT", Side: model.SideSell, Kind: model.KindTWAP,
		TotalQuantity: dec("0.9"), NumIntervals: 3, IntervalSeconds: 60,
	}, testRules())
	assert.NoError(t, err)
	assert.Len(t, plan.Items, 3)
	assert.Equal(t, model.ContinueAndCollect, plan.Policy)
	assert.Empty(t, plan.Warnings)

	for i, it := range plan.Items {
		assert.Equal(t, model.ItemMarket, it.Kind)
		assert.Equal(t, model.SideSell, it.Side)
		assert.True(t, it.Quantity.Equal(dec("0.3")), "leg %d quantity %s", i, it.Quantity)
	}
	assert.Equal(t, 60*time.Second, plan.Items[0].Delay)
	assert.Equal(t, 60*time.Second, plan.Items[1].Delay)
	assert.Equal(t, time.Duration(0), plan.Items[2].Delay)
}

func TestPlanTWAPRoundingDriftWarning(t *testing.T) {
	p := NewPlanner()
	// 1 / 3 rounds to 0.333 per leg; 0.999 total drifts a full milli-lot.
	plan, err := p.Plan(&model.OrderRequest{
		Symbol: "BTCUSDT", Side: model.SideBuy, Kind: model.KindTWAP,
		TotalQuantity: dec("1"), NumIntervals: 3, IntervalSeconds: 10,
	}, testRules())
	assert.NoError(t, err)
	assert.True(t, plan.Items[0].Quantity.Equal(dec("0.333")))
	assert.Len(t, plan.Warnings, 1)
}

func TestPlanTWAPInsufficientLegs(t *testing.T) {
	p := NewPlanner()
	_, err := p.Plan(&model.OrderRequest{
		Symbol: "BTCUSDT", Side: model.SideBuy, Kind: model.KindTWAP,
		TotalQuantity: dec("1"), NumIntervals: 0, IntervalSeconds: 10,
	}, testRules())

	var pe *model.PlanningError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, model.CodeInsufficientLegs, pe.Code)
}

func TestPlanOCO(t *testing.T) {
	p := NewPlanner()
	plan, err := p.Plan(&model.OrderRequest{
		Symbol: "BTCUSDT", Side: model.SideSell, Kind: model.KindOCO,
		Quantity: dec("1"), StopPrice: dec("95"), TakeProfitPrice: dec("110"),
	}, testRules())
	assert.NoError(t, err)
	assert.Len(t, plan.Items, 2)
	assert.Equal(t, model.AbortOnFirstFailure, plan.Policy)

	stop, tp := plan.Items[0], plan.Items[1]
	assert.Equal(t, model.ItemStopMarket, stop.Kind)
	assert.True(t, stop.TriggerPrice.Equal(dec("95")))
	assert.Equal(t, model.ItemTakeProfitMarket, tp.Kind)
	assert.True(t, tp.TriggerPrice.Equal(dec("110")))
	assert.Equal(t, stop.Side, tp.Side)
	assert.True(t, stop.Quantity.Equal(tp.Quantity))
}
