package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"orderplanner/src/model"
)

// RuleSource provides cached trading rules.
type RuleSource interface {
	Get(ctx context.Context, symbol string) (*model.SymbolTradingRules, error)
}

// OrderValidator checks an order intent against the venue constraints.
type OrderValidator interface {
	Validate(ctx context.Context, req *model.OrderRequest) *model.ValidationResult
}

// StrategyPlanner decomposes a validated request into primitive legs.
type StrategyPlanner interface {
	Plan(req *model.OrderRequest, rules *model.SymbolTradingRules) (*model.StrategyPlan, error)
}

// PlanExecutor runs a plan against the venue.
type PlanExecutor interface {
	Execute(ctx context.Context, plan *model.StrategyPlan) *model.ExecutionReport
}

// EventJournal appends decision events. A nil journal disables journaling.
type EventJournal interface {
	Create(ctx context.Context, event *model.DecisionEvent) error
}

// OrderController drives the full trading flow: validate the intent, plan
// the strategy, execute it leg by leg, and journal every decision.
type OrderController struct {
	rules     RuleSource
	validator OrderValidator
	planner   StrategyPlanner
	executor  PlanExecutor
	journal   EventJournal
	log       *logger.Entry
}

// NewOrderController wires the flow together. journal may be nil.
func NewOrderController(
	rules RuleSource,
	validator OrderValidator,
	planner StrategyPlanner,
	executor PlanExecutor,
	journal EventJournal,
) *OrderController {
	return &OrderController{
		rules:     rules,
		validator: validator,
		planner:   planner,
		executor:  executor,
		journal:   journal,
		log:       logger.WithField("component", "controller"),
	}
}

// PlaceOrder runs one order request end to end and returns the final report.
// Requests that fail validation or planning come back as a Rejected report,
// not an error; the error return is reserved for infrastructure failures.
func (c *OrderController) PlaceOrder(ctx context.Context, req *model.OrderRequest) (*model.ExecutionReport, error) {
	c.log.WithFields(logger.Fields{
		"symbol": req.Symbol,
		"kind":   req.Kind,
		"side":   req.Side,
	}).Info("placing order")

	verdict := c.validator.Validate(ctx, req)
	if !verdict.OK {
		report := &model.ExecutionReport{
			Symbol: req.Symbol,
			Kind:   req.Kind,
			Status: model.StatusRejected,
		}
		for _, reason := range verdict.Reasons {
			report.Reasons = append(report.Reasons, model.Reason{
				Code:   string(reason.Code),
				Detail: reason.Detail,
			})
			c.journalEvent(ctx, &model.DecisionEvent{
				Symbol:     req.Symbol,
				Stage:      model.StageValidation,
				Kind:       string(req.Kind),
				Side:       string(req.Side),
				ReasonCode: string(reason.Code),
				Detail:     reason.Detail,
			})
		}
		c.log.WithFields(logger.Fields{
			"symbol": req.Symbol,
			"kind":   req.Kind,
			"reason": report.Reasons[0].Code,
		}).Warn("order rejected by validation")
		return report, nil
	}

	rules, err := c.rules.Get(ctx, req.Symbol)
	if err != nil {
		return nil, fmt.Errorf("loading trading rules: %w", err)
	}

	plan, err := c.planner.Plan(req, rules)
	if err != nil {
		report := &model.ExecutionReport{
			Symbol: req.Symbol,
			Kind:   req.Kind,
			Status: model.StatusRejected,
		}
		if pe, ok := err.(*model.PlanningError); ok {
			report.Reasons = append(report.Reasons, model.Reason{
				Code:   string(pe.Code),
				Detail: pe.Detail,
			})
			c.journalEvent(ctx, &model.DecisionEvent{
				Symbol:     req.Symbol,
				Stage:      model.StagePlanning,
				Kind:       string(req.Kind),
				Side:       string(req.Side),
				ReasonCode: string(pe.Code),
				Detail:     pe.Detail,
			})
			c.log.WithFields(logger.Fields{
				"symbol": req.Symbol,
				"kind":   req.Kind,
				"reason": pe.Code,
			}).Warn("order rejected by planning")
			return report, nil
		}
		return nil, fmt.Errorf("planning: %w", err)
	}

	for _, warning := range plan.Warnings {
		c.log.WithFields(logger.Fields{
			"symbol": req.Symbol,
			"kind":   req.Kind,
		}).Warn(warning)
		c.journalEvent(ctx, &model.DecisionEvent{
			Symbol: req.Symbol,
			Stage:  model.StagePlanning,
			Kind:   string(req.Kind),
			Side:   string(req.Side),
			Detail: warning,
		})
	}

	report := c.executor.Execute(ctx, plan)

	c.log.WithFields(logger.Fields{
		"symbol": report.Symbol,
		"kind":   report.Kind,
		"status": report.Status,
		"legs":   len(report.Outcomes),
	}).Info("order flow finished")
	return report, nil
}

func (c *OrderController) journalEvent(ctx context.Context, event *model.DecisionEvent) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Create(ctx, event); err != nil {
		c.log.WithError(err).Warn("failed to journal decision event")
	}
}

// SubmissionRecorder adapts the journal into the coordinator's per-leg
// recorder so every submission attempt lands in the journal as it happens.
type SubmissionRecorder struct {
	journal EventJournal
	log     *logger.Entry
}

// NewSubmissionRecorder builds a recorder over the journal.
func NewSubmissionRecorder(journal EventJournal) *SubmissionRecorder {
	return &SubmissionRecorder{
		journal: journal,
		log:     logger.WithField("component", "controller"),
	}
}

// Record writes one leg outcome to the journal.
func (r *SubmissionRecorder) Record(plan *model.StrategyPlan, outcome model.ItemOutcome) {
	if r.journal == nil {
		return
	}

	event := &model.DecisionEvent{
		Symbol:   plan.Symbol,
		Stage:    model.StageSubmission,
		Kind:     string(outcome.Item.Kind),
		Side:     string(outcome.Item.Side),
		Quantity: outcome.Item.Quantity.String(),
	}
	if !outcome.Item.Price.IsZero() {
		event.Price = outcome.Item.Price.String()
	}
	if !outcome.Item.TriggerPrice.IsZero() {
		event.TriggerPrice = outcome.Item.TriggerPrice.String()
	}
	if outcome.Failed() {
		event.Detail = outcome.FailReason
		event.ReasonCode = "SUBMISSION_FAILED"
	} else {
		event.VenueOrderID = outcome.Result.OrderID
	}

	if err := r.journal.Create(context.Background(), event); err != nil {
		r.log.WithError(err).Warn("failed to journal submission outcome")
	}
}

// VenueDiagnostics is the slice of the venue client the health commands use.
type VenueDiagnostics interface {
	Ping(ctx context.Context) error
	ServerTime(ctx context.Context) (time.Time, error)
	FuturesAccountBalance(ctx context.Context) ([]model.BinanceAssetBalance, error)
}

// DiagnosticsController backs the check-balance and check-connection commands.
type DiagnosticsController struct {
	venue VenueDiagnostics
	log   *logger.Entry
}

// NewDiagnosticsController builds a diagnostics controller.
func NewDiagnosticsController(venue VenueDiagnostics) *DiagnosticsController {
	return &DiagnosticsController{
		venue: venue,
		log:   logger.WithField("component", "diagnostics"),
	}
}

// CheckConnection verifies REST reachability, clock drift, and that the
// credentials can sign requests.
func (d *DiagnosticsController) CheckConnection(ctx context.Context) error {
	if err := d.venue.Ping(ctx); err != nil {
		return fmt.Errorf("venue unreachable: %w", err)
	}

	serverTime, err := d.venue.ServerTime(ctx)
	if err != nil {
		return err
	}
	drift := time.Since(serverTime)
	d.log.WithFields(logger.Fields{
		"serverTime": serverTime.UTC().Format(time.RFC3339),
		"drift":      drift.String(),
	}).Info("venue clock checked")

	if _, err := d.venue.FuturesAccountBalance(ctx); err != nil {
		return fmt.Errorf("signed request failed: %w", err)
	}

	d.log.Info("connection check passed")
	return nil
}

// CheckBalance prints every asset with a positive balance.
func (d *DiagnosticsController) CheckBalance(ctx context.Context) error {
	balances, err := d.venue.FuturesAccountBalance(ctx)
	if err != nil {
		return err
	}

	shown := 0
	for _, b := range balances {
		balance, err := decimal.NewFromString(b.Balance)
		if err != nil || !balance.IsPositive() {
			continue
		}
		fmt.Printf("%s: balance=%s available=%s\n", b.Asset, b.Balance, b.AvailableBalance)
		shown++
	}
	if shown == 0 {
		fmt.Println("no assets with a positive balance")
	}
	return nil
}
