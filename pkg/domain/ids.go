// Package domain holds typed identifiers shared across modules. Each ID is a
// distinct type over uuid.UUID so the compiler rejects cross-entity mixups,
// and each has a Parse constructor that enforces validity at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "pinky/pkg/domain-errors"
)

type (
	// UserID identifies a registered user.
	UserID uuid.UUID
	// GuestID identifies an ephemeral, unregistered evaluator.
	GuestID uuid.UUID
	// PromiseID identifies a promise.
	PromiseID uuid.UUID
	// ShareID identifies a tokenized share of a promise.
	ShareID uuid.UUID
	// EvaluationID identifies the single verdict recorded against a share.
	EvaluationID uuid.UUID
	// PolicyID identifies a point policy.
	PolicyID uuid.UUID
	// LedgerEntryID identifies an immutable point disbursement record.
	LedgerEntryID uuid.UUID
)

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", kind)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be nil", kind)
	}
	return parsed, nil
}

func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user id")
	return UserID(parsed), err
}

func ParseGuestID(raw string) (GuestID, error) {
	parsed, err := parseUUID(raw, "guest id")
	return GuestID(parsed), err
}

func ParsePromiseID(raw string) (PromiseID, error) {
	parsed, err := parseUUID(raw, "promise id")
	return PromiseID(parsed), err
}

func ParseShareID(raw string) (ShareID, error) {
	parsed, err := parseUUID(raw, "share id")
	return ShareID(parsed), err
}

func ParsePolicyID(raw string) (PolicyID, error) {
	parsed, err := parseUUID(raw, "policy id")
	return PolicyID(parsed), err
}

func NewUserID() UserID           { return UserID(uuid.New()) }
func NewGuestID() GuestID         { return GuestID(uuid.New()) }
func NewPromiseID() PromiseID     { return PromiseID(uuid.New()) }
func NewShareID() ShareID         { return ShareID(uuid.New()) }
func NewEvaluationID() EvaluationID { return EvaluationID(uuid.New()) }
func NewPolicyID() PolicyID       { return PolicyID(uuid.New()) }
func NewLedgerEntryID() LedgerEntryID { return LedgerEntryID(uuid.New()) }

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id GuestID) String() string       { return uuid.UUID(id).String() }
func (id PromiseID) String() string     { return uuid.UUID(id).String() }
func (id ShareID) String() string       { return uuid.UUID(id).String() }
func (id EvaluationID) String() string  { return uuid.UUID(id).String() }
func (id PolicyID) String() string      { return uuid.UUID(id).String() }
func (id LedgerEntryID) String() string { return uuid.UUID(id).String() }

// MarshalText keeps JSON round-trips in the canonical UUID string form;
// defined types do not inherit uuid.UUID's marshaling.
func (id UserID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id GuestID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id PromiseID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id ShareID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id EvaluationID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id PolicyID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id LedgerEntryID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = UserID(parsed)
	return nil
}

func (id *GuestID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = GuestID(parsed)
	return nil
}

func (id *PolicyID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = PolicyID(parsed)
	return nil
}

func (id *PromiseID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = PromiseID(parsed)
	return nil
}

func (id *ShareID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = ShareID(parsed)
	return nil
}

func (id *EvaluationID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = EvaluationID(parsed)
	return nil
}

func (id *LedgerEntryID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = LedgerEntryID(parsed)
	return nil
}

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id GuestID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id PromiseID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ShareID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id EvaluationID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PolicyID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id LedgerEntryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
