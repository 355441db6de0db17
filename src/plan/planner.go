package plan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"orderplanner/src/model"
	"orderplanner/src/quantize"
)

// Planner decomposes a validated order request into an ordered sequence of
// primitive orders. It never talks to the venue; prices and quantities in the
// produced plan are already on the symbol's tick and step grids.
type Planner struct {
	log *logger.Entry
}

// NewPlanner builds a strategy planner.
func NewPlanner() *Planner {
	return &Planner{log: logger.WithField("component", "plan")}
}

// Plan builds the strategy plan for the request. A PlanningError means the
// request, although individually valid, cannot be decomposed into legs.
func (p *Planner) Plan(req *model.OrderRequest, tr *model.SymbolTradingRules) (*model.StrategyPlan, error) {
	switch req.Kind {
	case model.KindMarket:
		return p.single(req, model.OrderPlanItem{
			Kind:     model.ItemMarket,
			Side:     req.Side,
			Quantity: req.Quantity,
		}), nil
	case model.KindLimit:
		return p.single(req, model.OrderPlanItem{
			Kind:     model.ItemLimit,
			Side:     req.Side,
			Quantity: req.Quantity,
			Price:    req.Price,
		}), nil
	case model.KindStopLimit:
		return p.single(req, model.OrderPlanItem{
			Kind:         model.ItemStopTriggerLimit,
			Side:         req.Side,
			Quantity:     req.Quantity,
			Price:        req.LimitPrice,
			TriggerPrice: req.StopPrice,
		}), nil
	case model.KindGrid:
		return p.buildGrid(req, tr)
	case model.KindTWAP:
		return p.buildTWAP(req, tr)
	case model.KindOCO:
		return p.buildOCO(req), nil
	default:
		return nil, &model.PlanningError{
			Code:   model.CodeInsufficientLegs,
			Detail: fmt.Sprintf("no planner for order kind %q", req.Kind),
		}
	}
}

func (p *Planner) single(req *model.OrderRequest, item model.OrderPlanItem) *model.StrategyPlan {
	return &model.StrategyPlan{
		Symbol: req.Symbol,
		Kind:   req.Kind,
		Items:  []model.OrderPlanItem{item},
		Policy: model.AbortOnFirstFailure,
	}
}

// buildGrid lays limit buys ascending from the range bottom and limit sells
// descending from the top, evenly spaced across the whole range. Legs whose
// snapped price escapes the range are dropped with a warning; an overlap
// between the two ladders is reported but not corrected.
func (p *Planner) buildGrid(req *model.OrderRequest, tr *model.SymbolTradingRules) (*model.StrategyPlan, error) {
	if req.NumBuyOrders < 1 || req.NumSellOrders < 1 {
		return nil, &model.PlanningError{
			Code: model.CodeInsufficientLegs,
			Detail: fmt.Sprintf("grid needs at least one buy and one sell order, got %d/%d",
				req.NumBuyOrders, req.NumSellOrders),
		}
	}

	total := req.NumBuyOrders + req.NumSellOrders
	priceStep := req.MaxPrice.Sub(req.MinPrice).Div(decimal.NewFromInt(int64(total - 1)))
	if priceStep.LessThan(tr.TickSize) {
		return nil, &model.PlanningError{
			Code: model.CodeDegenerateRange,
			Detail: fmt.Sprintf("grid spacing %s over [%s, %s] is below tick size %s",
				priceStep, req.MinPrice, req.MaxPrice, tr.TickSize),
		}
	}

	plan := &model.StrategyPlan{
		Symbol: req.Symbol,
		Kind:   model.KindGrid,
		Policy: model.ContinueAndCollect,
	}

	var highestBuy, lowestSell decimal.Decimal
	for i := 0; i < req.NumBuyOrders; i++ {
		price := quantize.Snap(req.MinPrice.Add(priceStep.Mul(decimal.NewFromInt(int64(i)))), tr.TickSize)
		if price.GreaterThanOrEqual(req.MaxPrice) {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("buy ladder stopped after %d of %d legs: price %s reached max %s",
					i, req.NumBuyOrders, price, req.MaxPrice))
			break
		}
		plan.Items = append(plan.Items, model.OrderPlanItem{
			Kind:     model.ItemLimit,
			Side:     model.SideBuy,
			Quantity: req.QuantityPerOrder,
			Price:    price,
		})
		highestBuy = price
	}

	for i := 0; i < req.NumSellOrders; i++ {
		price := quantize.Snap(req.MaxPrice.Sub(priceStep.Mul(decimal.NewFromInt(int64(i)))), tr.TickSize)
		if price.LessThanOrEqual(req.MinPrice) {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("sell ladder stopped after %d of %d legs: price %s reached min %s",
					i, req.NumSellOrders, price, req.MinPrice))
			break
		}
		plan.Items = append(plan.Items, model.OrderPlanItem{
			Kind:     model.ItemLimit,
			Side:     model.SideSell,
			Quantity: req.QuantityPerOrder,
			Price:    price,
		})
		if lowestSell.IsZero() || price.LessThan(lowestSell) {
			lowestSell = price
		}
	}

	if !highestBuy.IsZero() && !lowestSell.IsZero() && highestBuy.GreaterThanOrEqual(lowestSell) {
		plan.Warnings = append(plan.Warnings,
			fmt.Sprintf("buy ladder top %s overlaps sell ladder bottom %s", highestBuy, lowestSell))
	}

	p.log.WithFields(logger.Fields{
		"symbol":    req.Symbol,
		"legs":      len(plan.Items),
		"priceStep": priceStep.String(),
		"warnings":  len(plan.Warnings),
	}).Info("planned grid")
	return plan, nil
}

// buildTWAP splits the total quantity evenly over the intervals, one market
// order per interval. Rounding the slice to the lot step can make the sum
// drift from the requested total; a drift beyond half a step is reported.
func (p *Planner) buildTWAP(req *model.OrderRequest, tr *model.SymbolTradingRules) (*model.StrategyPlan, error) {
	if req.NumIntervals < 1 {
		return nil, &model.PlanningError{
			Code:   model.CodeInsufficientLegs,
			Detail: fmt.Sprintf("twap needs at least one interval, got %d", req.NumIntervals),
		}
	}

	n := decimal.NewFromInt(int64(req.NumIntervals))
	per := req.TotalQuantity.Div(n).Round(quantize.StepPrecision(tr.StepSize))

	plan := &model.StrategyPlan{
		Symbol: req.Symbol,
		Kind:   model.KindTWAP,
		Policy: model.ContinueAndCollect,
	}

	drift := per.Mul(n).Sub(req.TotalQuantity).Abs()
	if drift.GreaterThan(tr.StepSize.Div(decimal.NewFromInt(2))) {
		plan.Warnings = append(plan.Warnings,
			fmt.Sprintf("rounded slices sum to %s, requested total was %s", per.Mul(n), req.TotalQuantity))
	}

	interval := time.Duration(req.IntervalSeconds) * time.Second
	for i := 0; i < req.NumIntervals; i++ {
		delay := interval
		if i == req.NumIntervals-1 {
			delay = 0
		}
		plan.Items = append(plan.Items, model.OrderPlanItem{
			Kind:     model.ItemMarket,
			Side:     req.Side,
			Quantity: per,
			Delay:    delay,
		})
	}

	p.log.WithFields(logger.Fields{
		"symbol":      req.Symbol,
		"legs":        req.NumIntervals,
		"perInterval": per.String(),
	}).Info("planned twap")
	return plan, nil
}

// buildOCO emits the stop leg first, then the take-profit leg. The venue has
// no native one-cancels-other for this flow, so a fill on one leg does not
// cancel the other; callers must watch both.
func (p *Planner) buildOCO(req *model.OrderRequest) *model.StrategyPlan {
	return &model.StrategyPlan{
		Symbol: req.Symbol,
		Kind:   model.KindOCO,
		Policy: model.AbortOnFirstFailure,
		Items: []model.OrderPlanItem{
			{
				Kind:         model.ItemStopMarket,
				Side:         req.Side,
				Quantity:     req.Quantity,
				TriggerPrice: req.StopPrice,
			},
			{
				Kind:         model.ItemTakeProfitMarket,
				Side:         req.Side,
				Quantity:     req.Quantity,
				TriggerPrice: req.TakeProfitPrice,
			},
		},
	}
}
