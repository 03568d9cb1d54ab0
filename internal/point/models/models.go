// Package models defines point policies and the disbursement ledger.
package models

import (
	"strings"
	"time"

	id "pinky/pkg/domain"
	dErrors "pinky/pkg/domain-errors"
)

// PointPolicy is a named, signed point-delta rule. Negative deltas are
// spends; the ledger enforces the balance floor when applying them.
type PointPolicy struct {
	ID        id.PolicyID `json:"id"`
	Name      string      `json:"name"`
	Delta     int64       `json:"delta"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ActivityType names the event kinds that can trigger a disbursement.
type ActivityType string

const (
	ActivityAttendance ActivityType = "attendance"
	ActivityShare      ActivityType = "share"
	ActivityWork       ActivityType = "work"
	ActivityFarm       ActivityType = "farm"
)

// ActivityRef identifies the single triggering event for a ledger entry.
// IDs are opaque: attendance, work, and farm activities live outside this
// service, so only equality matters for the uniqueness invariant.
type ActivityRef struct {
	Type ActivityType `json:"type"`
	ID   string       `json:"id"`
}

// Validate enforces the exactly-one-reference rule at the boundary.
func (r ActivityRef) Validate() error {
	switch r.Type {
	case ActivityAttendance, ActivityShare, ActivityWork, ActivityFarm:
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "exactly one activity reference is required")
	}
	if strings.TrimSpace(r.ID) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "activity id is required")
	}
	return nil
}

// LedgerEntry is an immutable record of one disbursement. Once written it is
// never updated or deleted; corrections are new entries under new activities.
type LedgerEntry struct {
	ID        id.LedgerEntryID `json:"id"`
	UserID    id.UserID        `json:"user_id"`
	PolicyID  id.PolicyID      `json:"policy_id"`
	Activity  ActivityRef      `json:"activity"`
	Delta     int64            `json:"delta"`
	Reason    string           `json:"reason,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// CreatePolicyRequest is the JSON body for POST /point/policy.
type CreatePolicyRequest struct {
	PointName   string `json:"pointName"`
	UpdatePoint *int64 `json:"updatePoint"`
}

func (r *CreatePolicyRequest) Validate() error {
	if strings.TrimSpace(r.PointName) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "pointName is required")
	}
	if r.UpdatePoint == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "updatePoint is required")
	}
	return nil
}

// UpdatePolicyRequest is the JSON body for PUT /point/policy/{id}. Partial
// update: unset fields are left unchanged, but at least one must be present.
type UpdatePolicyRequest struct {
	PointName   *string `json:"pointName"`
	UpdatePoint *int64  `json:"updatePoint"`
}

func (r *UpdatePolicyRequest) Validate() error {
	if r.PointName == nil && r.UpdatePoint == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one of pointName or updatePoint is required")
	}
	if r.PointName != nil && strings.TrimSpace(*r.PointName) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "pointName must not be blank")
	}
	return nil
}

// PayRequest is the JSON body for POST /point/pay. Exactly one of the
// activity references must be set.
type PayRequest struct {
	UserID        string `json:"userId"`
	PointPolicyID string `json:"pointPolicyId"`
	AttendanceID  string `json:"attendanceId"`
	ShareID       string `json:"shareId"`
	WorkID        string `json:"workId"`
	FarmID        string `json:"farmId"`
	Reason        string `json:"reason"`
}

// Activity extracts the single activity reference, rejecting zero or
// multiple.
func (r *PayRequest) Activity() (ActivityRef, error) {
	var refs []ActivityRef
	if r.AttendanceID != "" {
		refs = append(refs, ActivityRef{Type: ActivityAttendance, ID: r.AttendanceID})
	}
	if r.ShareID != "" {
		refs = append(refs, ActivityRef{Type: ActivityShare, ID: r.ShareID})
	}
	if r.WorkID != "" {
		refs = append(refs, ActivityRef{Type: ActivityWork, ID: r.WorkID})
	}
	if r.FarmID != "" {
		refs = append(refs, ActivityRef{Type: ActivityFarm, ID: r.FarmID})
	}
	if len(refs) != 1 {
		return ActivityRef{}, dErrors.New(dErrors.CodeInvalidInput, "exactly one activity reference is required")
	}
	return refs[0], nil
}
