package services

import (
	"errors"
	"fmt"
)

// Kind classifies a business-rule rejection so the routing layer can map it
// to a transport status without string matching.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindUnauthorized         Kind = "unauthorized"
	KindNotOwner             Kind = "not_owner"
	KindNotLeader            Kind = "not_leader"
	KindNotTeamMember        Kind = "not_team_member"
	KindTeamMismatch         Kind = "team_mismatch"
	KindInvalidTransition    Kind = "invalid_transition"
	KindCapacityExceeded     Kind = "capacity_exceeded"
	KindTeamFull             Kind = "team_full"
	KindTeamLocked           Kind = "team_locked"
	KindDuplicateApplication Kind = "duplicate_application"
	KindDuplicateMember      Kind = "duplicate_member"
	KindAlreadyMember        Kind = "already_member"
	KindAlreadySubmitted     Kind = "already_submitted"
	KindAlreadyAssigned      Kind = "already_assigned"
	KindDeadlinePassed       Kind = "deadline_passed"
	KindInvalidGrade         Kind = "invalid_grade"
	KindValidation           Kind = "validation_error"
)

// Error is a recoverable-by-caller workflow rejection. Returning one from a
// transaction callback aborts the transaction, so no partial state persists.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// E builds a workflow error.
func E(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a workflow error, or "" for infrastructure
// failures.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
