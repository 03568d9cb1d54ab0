// Package audit defines the audit event model and publisher port. Events are
// emitted from domain logic to capture key actions; keep the model
// transport-agnostic so sinks can fan out.
package audit

import (
	"context"
	"time"
)

// Event captures one security- or compliance-relevant action.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	// Subject is the primary entity the action applied to (share ID, ledger
	// entry ID, policy ID).
	Subject string `json:"subject"`
	// ActorID identifies who performed the action. For guest evaluators this
	// is the guest ID; for admin operations the acting admin label.
	ActorID string `json:"actor_id,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Reason  string `json:"reason,omitempty"`
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string `json:"request_id,omitempty"`
	// Device is the parsed user-agent summary for share-link evaluations.
	Device string `json:"device,omitempty"`
}

// Actions emitted by the core workflows.
const (
	ActionShareIssued         = "share_issued"
	ActionEvaluationRecorded  = "evaluation_recorded"
	ActionPointsDisbursed     = "points_disbursed"
	ActionDisbursementRefused = "disbursement_refused"
	ActionPolicyUpdated       = "point_policy_updated"
	ActionPolicyDeleted       = "point_policy_deleted"
)

// Publisher emits audit events. Implementations must be safe for concurrent
// use; a failed emit must never fail the business operation that produced it.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
