package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"orderplanner/src/model"
	"orderplanner/src/quantize"
	"orderplanner/src/rules"
)

// MarkPriceSource fetches the current mark price for a symbol.
type MarkPriceSource interface {
	FetchMarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Validator checks order intents against the symbol's trading rules before
// any planning or submission happens. Checks are conjunctive and stop at the
// first failure.
type Validator struct {
	rules *rules.Repository
	marks MarkPriceSource
	log   *logger.Entry
}

// NewValidator builds a validator on top of the rule repository and a mark
// price source.
func NewValidator(ruleRepo *rules.Repository, marks MarkPriceSource) *Validator {
	return &Validator{
		rules: ruleRepo,
		marks: marks,
		log:   logger.WithField("component", "validate"),
	}
}

// Validate runs every check that applies to the request's kind. The result
// carries the first failing check; a failed request must not be submitted.
func (v *Validator) Validate(ctx context.Context, req *model.OrderRequest) *model.ValidationResult {
	tr, err := v.rules.Get(ctx, req.Symbol)
	if err != nil {
		if errors.Is(err, rules.ErrSymbolNotFound) {
			return fail(model.CodeSymbolUnavailable, fmt.Sprintf("symbol %s is not listed", req.Symbol))
		}
		return fail(model.CodeSymbolUnavailable, fmt.Sprintf("trading rules unavailable for %s: %v", req.Symbol, err))
	}

	if tr.Status != model.StatusTrading {
		return fail(model.CodeNotTradable, fmt.Sprintf("symbol %s has status %s", req.Symbol, tr.Status))
	}

	if !req.Side.Valid() {
		return fail(model.CodeBadRange, fmt.Sprintf("side must be BUY or SELL, got %q", req.Side))
	}

	switch req.Kind {
	case model.KindMarket:
		if r := v.checkQuantity(tr, req.Quantity); r != nil {
			return r
		}
	case model.KindLimit:
		if r := v.checkQuantity(tr, req.Quantity); r != nil {
			return r
		}
		if r := v.checkPrice(tr, "price", req.Price); r != nil {
			return r
		}
	case model.KindStopLimit:
		if r := v.validateStopLimit(ctx, tr, req); r != nil {
			return r
		}
	case model.KindOCO:
		if r := v.validateOCO(ctx, tr, req); r != nil {
			return r
		}
	case model.KindGrid:
		if r := v.validateGrid(tr, req); r != nil {
			return r
		}
	case model.KindTWAP:
		if r := v.validateTWAP(tr, req); r != nil {
			return r
		}
	default:
		return fail(model.CodeBadRange, fmt.Sprintf("unknown order kind %q", req.Kind))
	}

	return &model.ValidationResult{OK: true}
}

func (v *Validator) validateStopLimit(ctx context.Context, tr *model.SymbolTradingRules, req *model.OrderRequest) *model.ValidationResult {
	if r := v.checkQuantity(tr, req.Quantity); r != nil {
		return r
	}
	if r := v.checkPrice(tr, "stop price", req.StopPrice); r != nil {
		return r
	}
	if r := v.checkPrice(tr, "limit price", req.LimitPrice); r != nil {
		return r
	}

	mark, ok := v.markPrice(ctx, req.Symbol)
	if !ok {
		return nil
	}

	switch req.Side {
	case model.SideBuy:
		if !req.StopPrice.GreaterThan(mark) {
			return fail(model.CodeIllogicalPrice,
				fmt.Sprintf("buy stop price %s must be above mark price %s", req.StopPrice, mark))
		}
		if req.LimitPrice.LessThan(req.StopPrice) {
			return fail(model.CodeIllogicalPrice,
				fmt.Sprintf("buy limit price %s must not be below stop price %s", req.LimitPrice, req.StopPrice))
		}
	case model.SideSell:
		if !req.StopPrice.LessThan(mark) {
			return fail(model.CodeIllogicalPrice,
				fmt.Sprintf("sell stop price %s must be below mark price %s", req.StopPrice, mark))
		}
		if req.LimitPrice.GreaterThan(req.StopPrice) {
			return fail(model.CodeIllogicalPrice,
				fmt.Sprintf("sell limit price %s must not be above stop price %s", req.LimitPrice, req.StopPrice))
		}
	}
	return nil
}

func (v *Validator) validateOCO(ctx context.Context, tr *model.SymbolTradingRules, req *model.OrderRequest) *model.ValidationResult {
	if r := v.checkQuantity(tr, req.Quantity); r != nil {
		return r
	}
	if r := v.checkPrice(tr, "stop price", req.StopPrice); r != nil {
		return r
	}
	if r := v.checkPrice(tr, "take profit price", req.TakeProfitPrice); r != nil {
		return r
	}

	mark, ok := v.markPrice(ctx, req.Symbol)
	if !ok {
		return nil
	}

	switch req.Side {
	case model.SideSell:
		// Protecting a long: stop below the mark, take profit above it.
		if !req.StopPrice.LessThan(mark) || !req.TakeProfitPrice.GreaterThan(mark) {
			return fail(model.CodeIllogicalPrice,
				fmt.Sprintf("sell oco needs stop %s < mark %s < take profit %s",
					req.StopPrice, mark, req.TakeProfitPrice))
		}
	case model.SideBuy:
		// Protecting a short: stop above the mark, take profit below it.
		if !req.StopPrice.GreaterThan(mark) || !req.TakeProfitPrice.LessThan(mark) {
			return fail(model.CodeIllogicalPrice,
				fmt.Sprintf("buy oco needs stop %s > mark %s > take profit %s",
					req.StopPrice, mark, req.TakeProfitPrice))
		}
	}
	return nil
}

func (v *Validator) validateGrid(tr *model.SymbolTradingRules, req *model.OrderRequest) *model.ValidationResult {
	if r := v.checkQuantity(tr, req.QuantityPerOrder); r != nil {
		return r
	}
	if !req.MinPrice.IsPositive() {
		return fail(model.CodeBadRange, fmt.Sprintf("grid min price %s must be positive", req.MinPrice))
	}
	if !req.MaxPrice.GreaterThan(req.MinPrice) {
		return fail(model.CodeBadRange,
			fmt.Sprintf("grid max price %s must be above min price %s", req.MaxPrice, req.MinPrice))
	}
	if !quantize.InRange(req.MinPrice, tr.PriceMin, tr.PriceMax) ||
		!quantize.InRange(req.MaxPrice, tr.PriceMin, tr.PriceMax) {
		return fail(model.CodeBadRange,
			fmt.Sprintf("grid range [%s, %s] exceeds allowed price band [%s, %s]",
				req.MinPrice, req.MaxPrice, tr.PriceMin, tr.PriceMax))
	}
	if req.NumBuyOrders < 0 || req.NumSellOrders < 0 {
		return fail(model.CodeBadRange, "grid order counts must not be negative")
	}
	return nil
}

func (v *Validator) validateTWAP(tr *model.SymbolTradingRules, req *model.OrderRequest) *model.ValidationResult {
	if !req.TotalQuantity.IsPositive() {
		return fail(model.CodeBadRange, fmt.Sprintf("twap total quantity %s must be positive", req.TotalQuantity))
	}
	if !quantize.IsCompliant(req.TotalQuantity, tr.StepSize) {
		return fail(model.CodeBadStep,
			fmt.Sprintf("twap total quantity %s is not a multiple of step %s", req.TotalQuantity, tr.StepSize))
	}
	if req.IntervalSeconds < 0 {
		return fail(model.CodeBadRange, fmt.Sprintf("twap interval seconds %d must not be negative", req.IntervalSeconds))
	}
	if req.NumIntervals < 1 {
		// Leg counts are judged at planning time.
		return nil
	}

	// The per-interval slice is what actually reaches the venue, so it is the
	// value held against the lot rules.
	per := req.TotalQuantity.
		Div(decimal.NewFromInt(int64(req.NumIntervals))).
		Round(quantize.StepPrecision(tr.StepSize))
	if !quantize.InRange(per, tr.QtyMin, tr.QtyMax) {
		return fail(model.CodeBadRange,
			fmt.Sprintf("twap per-interval quantity %s outside allowed [%s, %s]", per, tr.QtyMin, tr.QtyMax))
	}
	if !quantize.IsCompliant(per, tr.StepSize) {
		return fail(model.CodeBadStep,
			fmt.Sprintf("twap per-interval quantity %s is not a multiple of step %s", per, tr.StepSize))
	}
	return nil
}

func (v *Validator) checkQuantity(tr *model.SymbolTradingRules, qty decimal.Decimal) *model.ValidationResult {
	if !quantize.InRange(qty, tr.QtyMin, tr.QtyMax) {
		return fail(model.CodeBadRange,
			fmt.Sprintf("quantity %s outside allowed [%s, %s]", qty, tr.QtyMin, tr.QtyMax))
	}
	if !quantize.IsCompliant(qty, tr.StepSize) {
		return fail(model.CodeBadStep,
			fmt.Sprintf("quantity %s is not a multiple of step %s", qty, tr.StepSize))
	}
	return nil
}

func (v *Validator) checkPrice(tr *model.SymbolTradingRules, label string, price decimal.Decimal) *model.ValidationResult {
	if !quantize.InRange(price, tr.PriceMin, tr.PriceMax) {
		return fail(model.CodeBadRange,
			fmt.Sprintf("%s %s outside allowed [%s, %s]", label, price, tr.PriceMin, tr.PriceMax))
	}
	if !quantize.IsCompliant(price, tr.TickSize) {
		return fail(model.CodeBadStep,
			fmt.Sprintf("%s %s is not a multiple of tick %s", label, price, tr.TickSize))
	}
	return nil
}

// markPrice fetches the mark price for the logical checks. When the fetch
// fails the logical checks are skipped rather than failing the whole request.
func (v *Validator) markPrice(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	mark, err := v.marks.FetchMarkPrice(ctx, symbol)
	if err != nil {
		v.log.WithError(err).WithField("symbol", symbol).
			Warn("mark price unavailable, skipping logical price checks")
		return decimal.Decimal{}, false
	}
	return mark, true
}

func fail(code model.ValidationCode, detail string) *model.ValidationResult {
	return &model.ValidationResult{
		OK:      false,
		Reasons: []model.ValidationError{{Code: code, Detail: detail}},
	}
}
