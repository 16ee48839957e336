// Package autosync provides sentinel errors for sync operations.
// All errors can be checked using errors.Is() for programmatic handling.
package autosync

import (
	"errors"
	"fmt"
)

// Common sentinel errors that can be checked with errors.Is().
// These wrap underlying go-git errors while providing a stable API for consumers.

// ErrMissingToken is returned when no push credential is configured.
// This is a precondition failure: the run aborts before touching the repository.
var ErrMissingToken = errors.New("push token not set")

// ErrConcurrentOperation is returned when the repository's own index.lock exists
// and is younger than the staleness threshold, meaning another git operation is
// likely still in flight and must not be disturbed.
var ErrConcurrentOperation = errors.New("another git operation is in progress")

// ErrRebaseConflict is returned when replaying local commits on top of upstream
// would touch files that also changed upstream. The conflict requires manual
// resolution; no automatic merging is attempted.
var ErrRebaseConflict = errors.New("rebase conflict requires manual resolution")

// ErrPushRejected is returned when both the plain push and the explicit-refspec
// retry were rejected by the remote.
var ErrPushRejected = errors.New("push rejected")

// ErrAlreadyUpToDate is returned when fetch or push operations result in no
// changes because the local and remote states are already synchronized.
var ErrAlreadyUpToDate = errors.New("already up to date")

// ErrNotFastForward is returned when a push cannot be performed as a
// fast-forward update of the remote branch.
var ErrNotFastForward = errors.New("not a fast-forward")

// ErrDetachedHead is returned when the repository HEAD does not point at a
// branch. Callers fall back to a configured branch name in this state.
var ErrDetachedHead = errors.New("HEAD is detached")

// ErrRemoteMissing is returned when the named remote is not configured in the
// repository.
var ErrRemoteMissing = errors.New("remote not configured")

// ErrEmptyCommit is returned when a commit is requested with no staged changes
// and empty commits were not explicitly allowed.
var ErrEmptyCommit = errors.New("no changes staged for commit")

// ErrInvalidRef is returned when a reference name, revision specification, or
// option value is malformed or invalid.
var ErrInvalidRef = errors.New("invalid reference")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
