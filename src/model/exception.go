package model

import "fmt"

// Validation reason codes. Terminal: requests failing validation are never
// retried.
type ValidationCode string

const (
	CodeSymbolUnavailable ValidationCode = "SYMBOL_UNAVAILABLE"
	CodeNotTradable       ValidationCode = "NOT_TRADABLE"
	CodeBadRange          ValidationCode = "BAD_RANGE"
	CodeBadStep           ValidationCode = "BAD_STEP"
	CodeIllogicalPrice    ValidationCode = "ILLOGICAL_PRICE"
)

// ValidationError is one failed validation check.
type ValidationError struct {
	Code   ValidationCode
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed [%s]: %s", e.Code, e.Detail)
}

// Planning reason codes. Raised after validation but before any submission.
type PlanningCode string

const (
	CodeInsufficientLegs PlanningCode = "INSUFFICIENT_LEGS"
	CodeDegenerateRange  PlanningCode = "DEGENERATE_RANGE"
)

// PlanningError means the validated request cannot be decomposed into a plan.
type PlanningError struct {
	Code   PlanningCode
	Detail string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed [%s]: %s", e.Code, e.Detail)
}

// Submission failure kinds, per leg.
type SubmissionKind string

const (
	SubmissionRateLimited          SubmissionKind = "RATE_LIMITED"
	SubmissionRejected             SubmissionKind = "REJECTED"
	SubmissionTransportUnavailable SubmissionKind = "TRANSPORT_UNAVAILABLE"
)

// SubmissionError is a per-leg failure from the order submission collaborator.
// Whether it aborts the rest of the plan depends on the plan's policy.
type SubmissionError struct {
	Kind   SubmissionKind
	Reason string
}

func (e *SubmissionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("submission failed [%s]", e.Kind)
	}
	return fmt.Sprintf("submission failed [%s]: %s", e.Kind, e.Reason)
}
