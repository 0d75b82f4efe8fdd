package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/yabetsTesfaye/addiscares-backend/pkg/domain-errors"
)

// Typed identifiers keep principals, notifications, and reports from being
// mixed up at compile time. Construct them via the Parse functions at trust
// boundaries; direct casting bypasses validation.

// PrincipalID identifies an authenticated actor (reporter, government
// official, or admin). Minted only by the directory when a principal is
// provisioned; the notification core only ever parses them.
type PrincipalID uuid.UUID

// NotificationID identifies a notification document.
type NotificationID uuid.UUID

// ParsePrincipalID constructs a PrincipalID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or nil.
func ParsePrincipalID(s string) (PrincipalID, error) {
	u, err := parseUUID(s, "principal id")
	return PrincipalID(u), err
}

// ParseNotificationID constructs a NotificationID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or nil.
func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s, "notification id")
	return NotificationID(u), err
}

// NewNotificationID mints a fresh notification identifier.
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New())
}

// NewPrincipalID mints a fresh principal identifier. Only the directory
// provisioning path should call this.
func NewPrincipalID() PrincipalID {
	return PrincipalID(uuid.New())
}

func (id PrincipalID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id PrincipalID) String() string { return uuid.UUID(id).String() }

func (id NotificationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

// Text marshaling keeps the canonical UUID string on the wire. Defined
// types do not inherit uuid.UUID's methods, so these are spelled out.

func (id PrincipalID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *PrincipalID) UnmarshalText(b []byte) error {
	parsed, err := ParsePrincipalID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id NotificationID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NotificationID) UnmarshalText(b []byte) error {
	parsed, err := ParseNotificationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be nil")
	}
	return u, nil
}

// ReportID is an opaque reference to a report in the reporting subsystem.
// The core stores it for association only and never dereferences it, so only
// the format is checked here.
type ReportID string

const maxReportIDLen = 64

// ParseReportID validates the format of an externally supplied report
// reference. Existence of the report is the report collaborator's problem.
func ParseReportID(s string) (ReportID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "report id cannot be empty")
	}
	if len(s) > maxReportIDLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "report id too long")
	}
	return ReportID(s), nil
}

func (id ReportID) String() string { return string(id) }
