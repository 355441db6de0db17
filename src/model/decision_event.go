package model

import "time"

// Journal stages, one per decision point in the trading flow.
const (
	StageValidation = "validation"
	StagePlanning   = "planning"
	StageSubmission = "submission"
)

// DecisionEvent is one append-only journal entry: a validation decision, a
// planned leg, a submission attempt, or a failure. Numeric values are stored
// as strings so sqlite and postgres render them identically.
type DecisionEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Symbol       string    `gorm:"size:32;index" json:"symbol"`
	Stage        string    `gorm:"size:20;index" json:"stage"`
	Kind         string    `gorm:"size:24" json:"kind"`
	Side         string    `gorm:"size:8" json:"side"`
	Quantity     string    `gorm:"size:40" json:"quantity,omitempty"`
	Price        string    `gorm:"size:40" json:"price,omitempty"`
	TriggerPrice string    `gorm:"size:40" json:"trigger_price,omitempty"`
	ReasonCode   string    `gorm:"size:40" json:"reason_code,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	VenueOrderID int64     `json:"venue_order_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName controls the exact table name for journal events.
func (DecisionEvent) TableName() string {
	return "decision_events"
}
