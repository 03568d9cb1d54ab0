// Package models defines the promise, share, and evaluation entities.
package models

import (
	"time"

	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
)

// Defaults applied to a share before its single evaluation lands.
const (
	DefaultScore     = 3
	DefaultFeedback  = "No feedback yet."
	DefaultGuestName = "Guest"
)

// Promise is a scheduled commitment created by a user. PromDate is optional;
// an unscheduled promise has no evaluation deadline.
type Promise struct {
	ID        id.PromiseID `json:"id"`
	OwnerID   id.UserID    `json:"owner_id"`
	Title     string       `json:"title"`
	Body      string       `json:"body,omitempty"`
	PromDate  *time.Time   `json:"prom_date,omitempty"`
	PlaceName string       `json:"place_name,omitempty"`
	Latitude  *float64     `json:"latitude,omitempty"`
	Longitude *float64     `json:"longitude,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CheckStatus is the closed verdict enumeration for a share.
type CheckStatus int8

const (
	CheckBroken   CheckStatus = -1
	CheckKept     CheckStatus = 0
	CheckKeptWell CheckStatus = 1
)

// ParseCheckStatus constructs a CheckStatus from external input. There is no
// default verdict, so out-of-range values are an input error. The comparison
// stays in int: narrowing first would wrap values like 255 onto valid
// verdicts.
func ParseCheckStatus(raw int) (CheckStatus, error) {
	switch raw {
	case int(CheckBroken), int(CheckKept), int(CheckKeptWell):
		return CheckStatus(raw), nil
	}
	return 0, dErrors.Newf(dErrors.CodeInvalidInput, "invalid check status %d", raw)
}

// String names the verdict for metrics and audit trails.
func (s CheckStatus) String() string {
	switch s {
	case CheckBroken:
		return "broken"
	case CheckKeptWell:
		return "kept_well"
	default:
		return "kept"
	}
}

// Share is a tokenized reference to a promise handed to one counterparty.
// Check status, score, and feedback are write-once via the evaluation
// workflow; until then they hold the defaults.
type Share struct {
	ID          id.ShareID   `json:"id"`
	PromiseID   id.PromiseID `json:"promise_id"`
	Token       string       `json:"token"`
	CheckStatus CheckStatus  `json:"check_status"`
	Score       int          `json:"score"`
	Feedback    string       `json:"feedback"`
	CreatedAt   time.Time    `json:"created_at"`
}

// EvaluatorKind tags the identity variant.
type EvaluatorKind string

const (
	EvaluatorRegistered EvaluatorKind = "registered"
	EvaluatorGuest      EvaluatorKind = "guest"
)

// EvaluatorIdentity is a tagged variant: exactly one of UserID or GuestID is
// set, decided by Kind. Modeling it this way makes the both-or-neither states
// unrepresentable.
type EvaluatorIdentity struct {
	Kind    EvaluatorKind
	UserID  id.UserID
	GuestID id.GuestID
	// GuestName is only meaningful when a guest is minted at evaluation time.
	GuestName string
}

// Registered builds an identity for an existing user.
func Registered(userID id.UserID) EvaluatorIdentity {
	return EvaluatorIdentity{Kind: EvaluatorRegistered, UserID: userID}
}

// Guest builds an identity for a returning guest.
func Guest(guestID id.GuestID) EvaluatorIdentity {
	return EvaluatorIdentity{Kind: EvaluatorGuest, GuestID: guestID}
}

// NewGuest builds an identity for a guest minted at evaluation time.
func NewGuest(name string) EvaluatorIdentity {
	return EvaluatorIdentity{Kind: EvaluatorGuest, GuestName: name}
}

// GuestRecord is a persisted ephemeral evaluator.
type GuestRecord struct {
	ID          id.GuestID `json:"id"`
	DisplayName string     `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Evaluation is the single verdict recorded against a share. At most one row
// ever exists per share, enforced by storage.
type Evaluation struct {
	ID        id.EvaluationID `json:"id"`
	ShareID   id.ShareID      `json:"share_id"`
	Kind      EvaluatorKind   `json:"evaluator_kind"`
	UserID    *id.UserID      `json:"user_id,omitempty"`
	GuestID   *id.GuestID     `json:"guest_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Outcome carries the verdict a counterparty submits. Score outside [1,5] and
// blank feedback are not errors: the share keeps its defaults for those
// fields.
type Outcome struct {
	CheckStatus CheckStatus
	Score       int
	Feedback    string
}

// ShareRef resolves a share by ID or by token; exactly one side is set.
type ShareRef struct {
	ID    id.ShareID
	Token string
}

func ShareRefByID(shareID id.ShareID) ShareRef { return ShareRef{ID: shareID} }
func ShareRefByToken(token string) ShareRef    { return ShareRef{Token: token} }
