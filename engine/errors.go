/*
errors.go - Centralized error kinds for the engine

PURPOSE:
  Every expected failure of a transition is a typed error listed here. The
  presentation layer decides whether to show or swallow them; none of them
  is fatal and none may leave the aggregate partially mutated.

ERROR CATEGORIES:
  1. Identity errors   - registration clashes, missing users
  2. Policy errors     - role-change denials
  3. Wallet errors     - insufficient funds
  4. Workflow errors   - deposit state-machine violations
  5. Entitlement errors - re-purchase, exhausted view quota

USAGE:
  Callers classify with errors.Is or the helpers below:

    if errors.Is(err, engine.ErrInsufficientFunds) { ... }
    if engine.IsNotFound(err) { ... }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateIdentity is returned when a registration shares a username,
	// email, or phone with an existing user.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrPermissionDenied is returned when the access control policy denies a
	// role change, including the immutable-owner and self-edit cases.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInsufficientFunds is returned by hard-failing debits (purchases).
	// Clamping adjustments never return it.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadyOwned is returned when purchasing a lesson already in the
	// user's entitlement set.
	ErrAlreadyOwned = errors.New("lesson already owned")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrLessonNotFound is returned when a referenced lesson doesn't exist.
	// Orphaned entitlement records surface this rather than crashing.
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrRequestNotFound is returned when a deposit request doesn't exist.
	ErrRequestNotFound = errors.New("deposit request not found")

	// ErrInvalidTransition is returned when processing a deposit request that
	// is not PENDING. APPROVED and REJECTED are terminal.
	ErrInvalidTransition = errors.New("invalid deposit transition")

	// ErrViewLimitExceeded is returned when a consumption attempt is gated
	// because viewsUsed has reached the lesson's view limit.
	ErrViewLimitExceeded = errors.New("view limit exceeded")

	// ErrNoSession is returned by operations that require a logged-in user.
	ErrNoSession = errors.New("no active session")

	// ErrInvalidRole is returned when a role-change names an unknown role.
	ErrInvalidRole = errors.New("invalid role")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateIdentityError names the field that clashed.
type DuplicateIdentityError struct {
	Field string // "username", "email", or "phone"
	Value string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("duplicate identity: %s %q already registered", e.Field, e.Value)
}

func (e *DuplicateIdentityError) Unwrap() error { return ErrDuplicateIdentity }

// PermissionDeniedError records which policy rule denied the action.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	return "permission denied: " + e.Reason
}

func (e *PermissionDeniedError) Unwrap() error { return ErrPermissionDenied }

// InsufficientFundsError provides details about a balance shortfall.
type InsufficientFundsError struct {
	UserID    UserID
	Available Amount
	Requested Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s, requested %s",
		e.Available, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}

// IsConflict reports whether the error indicates a state conflict rather
// than bad input: re-purchase, re-processing, or identity clash.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyOwned) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrDuplicateIdentity)
}

// IsClientError reports whether the error is an expected outcome of invalid
// caller input or state, as opposed to a persistence failure.
func IsClientError(err error) bool {
	return IsNotFound(err) ||
		IsConflict(err) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrViewLimitExceeded) ||
		errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrInvalidRole)
}
