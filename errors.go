package accounts

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeAccountExists signals a duplicate username on create
	TextCodeAccountExists = "ACCOUNT_EXISTS"
	// TextCodeAccountNotFound signals a lookup miss
	TextCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	// TextCodeGroupNotFound signals an unknown authgroup reference
	TextCodeGroupNotFound = "AUTHGROUP_NOT_FOUND"
	// TextCodeKeyExpired signals an activation attempt past the key deadline
	TextCodeKeyExpired = "REGISTRATION_KEY_EXPIRED"
	// TextCodeWrongKey signals a non-matching registration key
	TextCodeWrongKey = "REGISTRATION_KEY_MISMATCH"
	// TextCodeIdentityMismatch signals a login call against the wrong record
	TextCodeIdentityMismatch = "IDENTITY_MISMATCH"
	// TextCodeAccountLocked signals a login refused inside the lock window
	TextCodeAccountLocked = "ACCOUNT_LOCKED"
	// TextCodeLockedOut signals the failure that triggered the lock
	TextCodeLockedOut = "ACCOUNT_LOCKED_OUT"
	// TextCodeInvalidCreds signals a credential mismatch
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeEmptyPassword signals an empty secret where one is required
	TextCodeEmptyPassword = "EMPTY_PASSWORD"
)

// ErrAccountExists is returned when a username is already taken
var ErrAccountExists = goerrors.New("account already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeAccountExists).
	WithCode(goerrors.CodeConflict)

// ErrAccountNotFound is the error we return for missing accounts
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound)

// ErrAuthGroupNotFound is the error we return for missing authgroups
var ErrAuthGroupNotFound = goerrors.New("authgroup not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeGroupNotFound)

// ErrKeyExpired is returned once an activation attempt happens at or after
// the key deadline; the condition is terminal
var ErrKeyExpired = goerrors.New("registration key expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeKeyExpired)

// ErrWrongKey is returned when the supplied registration key does not match
var ErrWrongKey = goerrors.New("registration key does not match", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongKey)

// ErrIdentityMismatch is returned when a login call names a different
// username than the account it was invoked on
var ErrIdentityMismatch = goerrors.New("login identity does not match account", goerrors.CategoryValidation).
	WithTextCode(TextCodeIdentityMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrAccountLocked is returned while the lockout window is in effect
var ErrAccountLocked = goerrors.New("account is locked", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeAccountLocked)

// ErrLockedOut is returned by the failed attempt that tripped the lockout
var ErrLockedOut = goerrors.New("account locked after too many failed logins", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeLockedOut)

// ErrWrongPassword is the expected, recoverable outcome of a bad password
var ErrWrongPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrMismatchedHashAndPassword is the hasher-level comparison failure
var ErrMismatchedHashAndPassword = goerrors.New("password does not match digest", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty secrets
var ErrNoEmptyString = goerrors.New("value cannot be an empty string", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// IsNotFound reports whether err represents a missing record, either our own
// sentinels or a repository-level miss.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrAuthGroupNotFound) ||
		goerrors.IsNotFound(err)
}

// IsDuplicateUsername will check for a uniqueness violation surfaced by the
// driver. The unique column is the authority for duplicate detection so a
// race between an existence check and the insert still fails correctly.
// Repository and structured-error wrappers replace the outer message, so the
// whole chain is walked; the driver text only appears at the inner levels.
func IsDuplicateUsername(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountExists) {
		return true
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value violates unique constraint") {
			return true
		}
	}
	return false
}
