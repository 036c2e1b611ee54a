// Package xerrors holds the error taxonomy shared by services and handlers.
package xerrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

// Error is a client-facing error carrying its category.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Invalid(msg string) error { return New(KindInvalid, msg) }

// Generic
var (
	ErrInvalidInput = New(KindInvalid, "invalid input")
	ErrUnauthorized = New(KindUnauthorized, "unauthorized")
	ErrForbidden    = New(KindForbidden, "forbidden")
	ErrAdminOnly    = New(KindForbidden, "admin only")
	ErrNotFound     = New(KindNotFound, "not found")
	ErrInvalidDate  = New(KindInvalid, "invalid date, expected YYYY-MM-DD")
)

// Registration / credentials
var (
	ErrUserNotFound       = New(KindNotFound, "user not found")
	ErrEmailExists        = New(KindConflict, "email already exists")
	ErrInvalidCredentials = New(KindUnauthorized, "invalid email or password")
	ErrNotVerified        = New(KindForbidden, "account is not verified")
	ErrAwaitingApproval   = New(KindInvalid, "account is awaiting verification")
	ErrPasswordAlreadySet = New(KindConflict, "password already set")
	ErrWeakPassword       = New(KindInvalid, "password must be at least 8 characters")
	ErrInvalidToken       = New(KindUnauthorized, "invalid or expired token")
	ErrWrongAnswer        = New(KindUnauthorized, "security answer does not match")
	ErrNoSecurityQuestion = New(KindNotFound, "security question not set")
)

// Verification
var (
	ErrInvalidStatus   = New(KindInvalid, "invalid status")
	ErrAlreadyVerified = New(KindConflict, "user already verified")
	ErrNotPending      = New(KindConflict, "user is not pending verification")
)

// Change requests / obituaries
var (
	ErrInvalidRequestType   = New(KindInvalid, "invalid request type")
	ErrNotWorking           = New(KindInvalid, "only working members can submit requests")
	ErrPendingRequestExists = New(KindConflict, "a pending request already exists")
	ErrSamePosition         = New(KindInvalid, "new position is the same as the current designation")
	ErrSameDistrict         = New(KindInvalid, "new work district is the same as the current one")
	ErrRequestNotFound      = New(KindNotFound, "request not found")
	ErrRequestDecided       = New(KindConflict, "request has already been decided")
	ErrNotRequestOwner      = New(KindForbidden, "request does not belong to this member")
	ErrObituaryExists       = New(KindConflict, "obituary already exists for this member")
	ErrMemberNotFound       = New(KindNotFound, "member not found")
	ErrFutureDateOfDeath    = New(KindInvalid, "date of death cannot be in the future")
	ErrUnsupportedImage     = New(KindInvalid, "only jpg/jpeg/png/webp allowed")
	ErrImageTooLarge        = New(KindInvalid, "file too large (max 5MB)")
	ErrUploadsDisabled      = New(KindUnavailable, "photo uploads are not configured")
)

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps an error to its HTTP status code. Conflicts are client errors (400).
func Status(err error) int {
	switch KindOf(err) {
	case KindInvalid, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
