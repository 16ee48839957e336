// Package autosync keeps a local git working copy synchronized with its
// remote, unattended. One Run stages and commits local changes, rebases them
// on top of upstream to keep history linear, and pushes the result using a
// short-lived token spliced into the push URL for the duration of the push
// only.
//
// The package is built for scheduled jobs that must not overlap: a marker
// file under .git serializes runs across processes, and a second invocation
// that finds the lock held skips instead of erroring. Known-flaky
// environmental failures (DNS resolution, a racing git process) are likewise
// reported as skips so repeated unattended runs do not raise alarms;
// conditions that risk data loss (a live foreign index.lock, a rebase
// conflict) fail loudly.
//
// # Basic Usage
//
//	cfg, err := autosync.FromEnv(ctx)
//	if err != nil {
//	    return err
//	}
//	cfg.RepoDir = "/srv/mirror"
//
//	runner, err := autosync.NewRunner(cfg)
//	if err != nil {
//	    return err
//	}
//
//	res, err := runner.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	if res.Outcome == autosync.OutcomeSkipped {
//	    log.Printf("skipped: %s", res.Reason)
//	}
//
// # Configuration
//
// Config is resolved once at the boundary: FromEnv reads SKIP_PUSH,
// GITHUB_TOKEN, GIT_USER_NAME, GIT_USER_EMAIL, and the SYNC_* tuning knobs,
// and hands the runner a value. Nothing reads the environment mid-run.
//
// # Invariants
//
// The remote URL observed outside the push critical section is always the
// original, credential-free value: the credentialed URL is written
// immediately before the push and restored on every exit path. At most one
// run holds the exclusivity lock at a time.
//
// # Error Handling
//
// Sentinel errors classify failures:
//
//	res, err := runner.Run(ctx)
//	if errors.Is(err, autosync.ErrRebaseConflict) {
//	    // manual resolution required
//	}
//	if errors.Is(err, autosync.ErrConcurrentOperation) {
//	    // a live git process owns the repository right now
//	}
//
// Transient-failure detection is pluggable through the ErrorClassifier
// interface; SignatureClassifier implements the default message-signature
// matching.
//
// # In-Memory Operation
//
// All repository access goes through the native filesystem abstraction, so
// every operation, including locking and stale-lock recovery, runs against
// an in-memory filesystem in tests.
package autosync
