// Package autosync provides run outcome reporting.
package autosync

// Outcome distinguishes a completed sync from a deliberately skipped one.
// Failures are reported as errors, never as an Outcome: "not a problem" and
// "must escalate" take different return paths.
type Outcome int8

const (
	// OutcomeUnknown is the zero value. A Result returned alongside an error
	// carries it, so a zero Result never reads as a success.
	OutcomeUnknown Outcome = iota

	// OutcomeSuccess means the run completed and any local work reached the
	// remote.
	OutcomeSuccess

	// OutcomeSkipped means the run deliberately did nothing: syncing is
	// disabled, another run holds the lock, or a known transient condition
	// was detected. Skips are normal operation for unattended jobs.
	OutcomeSkipped
)

// String returns a human-readable string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SkipReason explains why a run was skipped.
type SkipReason string

const (
	// SkipDisabled: the disable switch was set; nothing was touched.
	SkipDisabled SkipReason = "sync disabled"

	// SkipLockHeld: another run holds the exclusivity lock.
	SkipLockHeld SkipReason = "another sync is running"

	// SkipTransientNetwork: name resolution or a similar low-resource network
	// condition failed; the environment is known to be flaky.
	SkipTransientNetwork SkipReason = "transient network condition"

	// SkipIndexLocked: the repository's index.lock surfaced mid-run.
	SkipIndexLocked SkipReason = "index locked by another git operation"
)

// Result reports what a run did.
type Result struct {
	// Outcome is success or skipped; failed runs return an error instead.
	Outcome Outcome

	// Reason is set when Outcome is OutcomeSkipped.
	Reason SkipReason

	// Branch is the branch that was synchronized.
	Branch string

	// CommitHash is the SHA of the commit created for local changes, if any.
	CommitHash string

	// Pushed reports whether the push completed.
	Pushed bool
}

func skipped(reason SkipReason) Result {
	return Result{Outcome: OutcomeSkipped, Reason: reason}
}
