package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order sides as the venue spells them.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of the two accepted values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderKind is the high-level strategy requested by the user.
type OrderKind string

const (
	KindMarket    OrderKind = "MARKET"
	KindLimit     OrderKind = "LIMIT"
	KindStopLimit OrderKind = "STOP_LIMIT"
	KindTWAP      OrderKind = "TWAP"
	KindGrid      OrderKind = "GRID"
	KindOCO       OrderKind = "OCO"
)

// StatusTrading is the venue symbol status under which orders are accepted.
const StatusTrading = "TRADING"

// SymbolTradingRules holds the per-symbol numeric constraints imposed by the
// venue. One instance per symbol, immutable once fetched.
type SymbolTradingRules struct {
	Symbol   string
	Status   string
	PriceMin decimal.Decimal
	PriceMax decimal.Decimal
	TickSize decimal.Decimal
	QtyMin   decimal.Decimal
	QtyMax   decimal.Decimal
	StepSize decimal.Decimal
}

// OrderRequest is a user order intent before validation. Only the fields
// relevant to the Kind are set; the rest stay at their zero value.
type OrderRequest struct {
	Symbol string
	Side   Side
	Kind   OrderKind

	Quantity decimal.Decimal // market, limit, stop-limit, oco
	Price    decimal.Decimal // limit

	StopPrice  decimal.Decimal // stop-limit, oco (stop leg trigger)
	LimitPrice decimal.Decimal // stop-limit

	TakeProfitPrice decimal.Decimal // oco (take-profit leg trigger)

	MinPrice         decimal.Decimal // grid
	MaxPrice         decimal.Decimal // grid
	NumBuyOrders     int             // grid
	NumSellOrders    int             // grid
	QuantityPerOrder decimal.Decimal // grid

	TotalQuantity   decimal.Decimal // twap
	NumIntervals    int             // twap
	IntervalSeconds int             // twap
}

// PlanItemKind is the primitive order type of a single plan leg, using the
// venue's futures order-type vocabulary.
type PlanItemKind string

const (
	ItemMarket           PlanItemKind = "MARKET"
	ItemLimit            PlanItemKind = "LIMIT"
	ItemStopTriggerLimit PlanItemKind = "STOP"
	ItemStopMarket       PlanItemKind = "STOP_MARKET"
	ItemTakeProfitMarket PlanItemKind = "TAKE_PROFIT_MARKET"
)

// OrderPlanItem is one primitive order within a strategy plan. Quantity and
// prices are already quantized to the symbol's step/tick grid.
type OrderPlanItem struct {
	Kind         PlanItemKind
	Side         Side
	Quantity     decimal.Decimal
	Price        decimal.Decimal // limit price, zero when the kind has none
	TriggerPrice decimal.Decimal // stop/take-profit trigger, zero when unused
	Delay        time.Duration   // wait after this leg before the next one
}

// PartialFailurePolicy decides what the coordinator does when a leg fails.
type PartialFailurePolicy string

const (
	AbortOnFirstFailure PartialFailurePolicy = "abort_on_first_failure"
	ContinueAndCollect  PartialFailurePolicy = "continue_and_collect"
)

// StrategyPlan is an ordered, fully quantized sequence of primitive orders
// produced from a validated request.
type StrategyPlan struct {
	Symbol   string
	Kind     OrderKind
	Items    []OrderPlanItem
	Policy   PartialFailurePolicy
	Warnings []string // non-fatal planning notes (early ladder stop, rounding drift)
}

// OrderResult is the venue acknowledgement for one submitted leg.
type OrderResult struct {
	OrderID       int64
	ClientOrderID string
	Status        string
	ExecutedQty   decimal.Decimal
}

// ItemOutcome records what happened to one plan leg.
type ItemOutcome struct {
	Index      int
	Item       OrderPlanItem
	Result     *OrderResult // set when the leg was accepted
	FailReason string       // set when the leg failed
}

// Failed reports whether the leg was attempted and rejected.
func (o ItemOutcome) Failed() bool {
	return o.Result == nil
}

// AggregateStatus summarizes a whole strategy run.
type AggregateStatus string

const (
	StatusCompleted          AggregateStatus = "COMPLETED"
	StatusPartiallyCompleted AggregateStatus = "PARTIALLY_COMPLETED"
	StatusAborted            AggregateStatus = "ABORTED"
	StatusRejected           AggregateStatus = "REJECTED"
)

// Reason is a generic reason code with human detail, used on reports for
// both validation and planning rejections.
type Reason struct {
	Code   string
	Detail string
}

// ExecutionReport is the final account of a strategy run: one outcome per
// attempted leg plus the aggregate status. Legs that were never attempted
// (abort, cancellation) are absent from Outcomes.
type ExecutionReport struct {
	Symbol   string
	Kind     OrderKind
	Status   AggregateStatus
	Outcomes []ItemOutcome
	Reasons  []Reason // populated when Status is REJECTED
}

// ValidationResult is the verdict of the order validator. On failure Reasons
// carries the first failing check (validation short-circuits).
type ValidationResult struct {
	OK      bool
	Reasons []ValidationError
}
