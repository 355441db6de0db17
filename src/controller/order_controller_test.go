package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"orderplanner/src/model"
)

type fakeRuleSource struct {
	rules *model.SymbolTradingRules
	err   error
}

func (f *fakeRuleSource) Get(ctx context.Context, symbol string) (*model.SymbolTradingRules, error) {
	return f.rules, f.err
}

type fakeValidator struct {
	result *model.ValidationResult
}

func (f *fakeValidator) Validate(ctx context.Context, req *model.OrderRequest) *model.ValidationResult {
	return f.result
}

type fakePlanner struct {
	plan *model.StrategyPlan
	err  error
}

func (f *fakePlanner) Plan(req *model.OrderRequest, rules *model.SymbolTradingRules) (*model.StrategyPlan, error) {
	return f.plan, f.err
}

type fakeExecutor struct {
	report *model.ExecutionReport
	called bool
}

func (f *fakeExecutor) Execute(ctx context.Context, plan *model.StrategyPlan) *model.ExecutionReport {
	f.called = true
	return f.report
}

type fakeJournal struct {
	events []model.DecisionEvent
	err    error
}

func (f *fakeJournal) Create(ctx context.Context, event *model.DecisionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, *event)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func marketRequest() *model.OrderRequest {
	return &model.OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     model.SideBuy,
		Kind:     model.KindMarket,
		Quantity: dec("0.01"),
	}
}

func TestPlaceOrderValidationRejection(t *testing.T) {
	journal := &fakeJournal{}
	executor := &fakeExecutor{}
	ctrl := NewOrderController(
		&fakeRuleSource{},
		&fakeValidator{result: &model.ValidationResult{
			OK:      false,
			Reasons: []model.ValidationError{{Code: model.CodeBadStep, Detail: "quantity off grid"}},
		}},
		&fakePlanner{},
		executor,
		journal,
	)

	report, err := ctrl.PlaceOrder(context.Background(), marketRequest())
	assert.NoError(t, err)
	assert.Equal(t, model.StatusRejected, report.Status)
	assert.Equal(t, string(model.CodeBadStep), report.Reasons[0].Code)
	assert.False(t, executor.called)

	assert.Len(t, journal.events, 1)
	assert.Equal(t, model.StageValidation, journal.events[0].Stage)
	assert.Equal(t, string(model.CodeBadStep), journal.events[0].ReasonCode)
}

func TestPlaceOrderPlanningRejection(t *testing.T) {
	journal := &fakeJournal{}
	executor := &fakeExecutor{}
	ctrl := NewOrderController(
		&fakeRuleSource{rules: &model.SymbolTradingRules{Symbol: "BTCUSDT"}},
		&fakeValidator{result: &model.ValidationResult{OK: true}},
		&fakePlanner{err: &model.PlanningError{
			Code:   model.CodeDegenerateRange,
			Detail: "spacing below tick",
		}},
		executor,
		journal,
	)

	report, err := ctrl.PlaceOrder(context.Background(), marketRequest())
	assert.NoError(t, err)
	assert.Equal(t, model.StatusRejected, report.Status)
	assert.Equal(t, string(model.CodeDegenerateRange), report.Reasons[0].Code)
	assert.False(t, executor.called)

	assert.Len(t, journal.events, 1)
	assert.Equal(t, model.StagePlanning, journal.events[0].Stage)
}

func TestPlaceOrderHappyPath(t *testing.T) {
	journal := &fakeJournal{}
	plan := &model.StrategyPlan{
		Symbol:   "BTCUSDT",
		Kind:     model.KindMarket,
		Policy:   model.AbortOnFirstFailure,
		Items:    []model.OrderPlanItem{{Kind: model.ItemMarket, Side: model.SideBuy, Quantity: dec("0.01")}},
		Warnings: []string{"rounded slices sum drifted"},
	}
	executor := &fakeExecutor{report: &model.ExecutionReport{
		Symbol: "BTCUSDT",
		Kind:   model.KindMarket,
		Status: model.StatusCompleted,
	}}
	ctrl := NewOrderController(
		&fakeRuleSource{rules: &model.SymbolTradingRules{Symbol: "BTCUSDT"}},
		&fakeValidator{result: &model.ValidationResult{OK: true}},
		&fakePlanner{plan: plan},
		executor,
		journal,
	)

	report, err := ctrl.PlaceOrder(context.Background(), marketRequest())
	assert.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, report.Status)
	assert.True(t, executor.called)

	// Plan warnings become planning-stage journal entries.
	assert.Len(t, journal.events, 1)
	assert.Equal(t, model.StagePlanning, journal.events[0].Stage)
	assert.Equal(t, "rounded slices sum drifted", journal.events[0].Detail)
}

func TestPlaceOrderRuleFetchFailure(t *testing.T) {
	ctrl := NewOrderController(
		&fakeRuleSource{err: errors.New("connection refused")},
		&fakeValidator{result: &model.ValidationResult{OK: true}},
		&fakePlanner{},
		&fakeExecutor{},
		nil,
	)

	_, err := ctrl.PlaceOrder(context.Background(), marketRequest())
	assert.Error(t, err)
}

func TestSubmissionRecorder(t *testing.T) {
	journal := &fakeJournal{}
	recorder := NewSubmissionRecorder(journal)

	plan := &model.StrategyPlan{Symbol: "BTCUSDT", Kind: model.KindOCO}
	recorder.Record(plan, model.ItemOutcome{
		Index: 0,
		Item: model.OrderPlanItem{
			Kind:         model.ItemStopMarket,
			Side:         model.SideSell,
			Quantity:     dec("0.5"),
			TriggerPrice: dec("95"),
		},
		Result: &model.OrderResult{OrderID: 42, Status: "NEW"},
	})
	recorder.Record(plan, model.ItemOutcome{
		Index: 1,
		Item: model.OrderPlanItem{
			Kind:         model.ItemTakeProfitMarket,
			Side:         model.SideSell,
			Quantity:     dec("0.5"),
			TriggerPrice: dec("110"),
		},
		FailReason: "submission failed [REJECTED]: MARGIN_NOT_SUFFICIENT",
	})

	assert.Len(t, journal.events, 2)

	accepted := journal.events[0]
	assert.Equal(t, model.StageSubmission, accepted.Stage)
	assert.Equal(t, int64(42), accepted.VenueOrderID)
	assert.Equal(t, "95", accepted.TriggerPrice)

	failed := journal.events[1]
	assert.Equal(t, "SUBMISSION_FAILED", failed.ReasonCode)
	assert.Contains(t, failed.Detail, "MARGIN_NOT_SUFFICIENT")
}

type fakeVenue struct {
	pingErr    error
	balances   []model.BinanceAssetBalance
	balanceErr error
}

func (f *fakeVenue) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeVenue) ServerTime(ctx context.Context) (time.Time, error) {
	return time.Now(), nil
}

func (f *fakeVenue) FuturesAccountBalance(ctx context.Context) ([]model.BinanceAssetBalance, error) {
	return f.balances, f.balanceErr
}

func TestCheckConnection(t *testing.T) {
	diag := NewDiagnosticsController(&fakeVenue{
		balances: []model.BinanceAssetBalance{{Asset: "USDT", Balance: "100"}},
	})
	assert.NoError(t, diag.CheckConnection(context.Background()))

	diag = NewDiagnosticsController(&fakeVenue{pingErr: errors.New("timeout")})
	assert.Error(t, diag.CheckConnection(context.Background()))

	diag = NewDiagnosticsController(&fakeVenue{balanceErr: errors.New("invalid signature")})
	assert.Error(t, diag.CheckConnection(context.Background()))
}

func TestCheckBalance(t *testing.T) {
	diag := NewDiagnosticsController(&fakeVenue{
		balances: []model.BinanceAssetBalance{
			{Asset: "USDT", Balance: "1000.5", AvailableBalance: "900"},
			{Asset: "BNB", Balance: "0", AvailableBalance: "0"},
		},
	})
	assert.NoError(t, diag.CheckBalance(context.Background()))

	diag = NewDiagnosticsController(&fakeVenue{balanceErr: errors.New("boom")})
	assert.Error(t, diag.CheckBalance(context.Background()))
}
