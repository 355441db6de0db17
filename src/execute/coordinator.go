package execute

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"orderplanner/src/model"
)

// OrderSubmitter places one primitive order on the venue.
type OrderSubmitter interface {
	Submit(ctx context.Context, symbol string, item model.OrderPlanItem) (*model.OrderResult, error)
}

// OutcomeRecorder receives every attempted leg's outcome as it happens.
// Implementations must not block for long; the journal repository is the
// usual sink.
type OutcomeRecorder interface {
	Record(plan *model.StrategyPlan, outcome model.ItemOutcome)
}

// Coordinator walks a strategy plan leg by leg, strictly in order, applying
// the plan's partial-failure policy. Legs are never submitted concurrently.
type Coordinator struct {
	submitter OrderSubmitter
	recorder  OutcomeRecorder
	log       *logger.Entry
}

// NewCoordinator builds a coordinator. recorder may be nil.
func NewCoordinator(submitter OrderSubmitter, recorder OutcomeRecorder) *Coordinator {
	return &Coordinator{
		submitter: submitter,
		recorder:  recorder,
		log:       logger.WithField("component", "execute"),
	}
}

// Execute runs the plan and returns the final report. Legs skipped because of
// an abort or a cancelled context are absent from the report's outcomes.
func (c *Coordinator) Execute(ctx context.Context, plan *model.StrategyPlan) *model.ExecutionReport {
	report := &model.ExecutionReport{
		Symbol: plan.Symbol,
		Kind:   plan.Kind,
	}

	var successes, failures int
	cancelled := false

	for i, item := range plan.Items {
		select {
		case <-ctx.Done():
			cancelled = true
		default:
		}
		if cancelled {
			c.log.WithFields(logger.Fields{
				"symbol": plan.Symbol,
				"leg":    i,
				"total":  len(plan.Items),
			}).Warn("context cancelled, abandoning remaining legs")
			break
		}

		outcome := model.ItemOutcome{Index: i, Item: item}
		result, err := c.submitter.Submit(ctx, plan.Symbol, item)
		if err != nil {
			failures++
			outcome.FailReason = err.Error()
			c.log.WithError(err).WithFields(logger.Fields{
				"symbol": plan.Symbol,
				"leg":    i,
				"kind":   item.Kind,
			}).Error("leg submission failed")
		} else {
			successes++
			outcome.Result = result
			c.log.WithFields(logger.Fields{
				"symbol":  plan.Symbol,
				"leg":     i,
				"kind":    item.Kind,
				"orderId": result.OrderID,
			}).Info("leg submitted")
		}

		report.Outcomes = append(report.Outcomes, outcome)
		if c.recorder != nil {
			c.recorder.Record(plan, outcome)
		}

		if err != nil && plan.Policy == model.AbortOnFirstFailure {
			if i < len(plan.Items)-1 {
				c.log.WithFields(logger.Fields{
					"symbol":  plan.Symbol,
					"skipped": len(plan.Items) - i - 1,
				}).Warn("aborting remaining legs after failure")
			}
			break
		}

		if item.Delay > 0 && i < len(plan.Items)-1 {
			if !c.wait(ctx, item.Delay) {
				cancelled = true
			}
		}
	}

	report.Status = aggregate(plan.Policy, cancelled, successes, failures, len(plan.Items))
	return report
}

// wait blocks for d or until ctx is cancelled, reporting whether the full
// delay elapsed.
func (c *Coordinator) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func aggregate(policy model.PartialFailurePolicy, cancelled bool, successes, failures, planned int) model.AggregateStatus {
	switch {
	case cancelled:
		return model.StatusAborted
	case failures == 0 && successes == planned:
		return model.StatusCompleted
	case policy == model.ContinueAndCollect && successes > 0:
		return model.StatusPartiallyCompleted
	default:
		return model.StatusAborted
	}
}
