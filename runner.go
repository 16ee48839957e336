// Package autosync provides the sync runner.
package autosync

import (
	"context"
	"errors"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	billyfs "github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/gitops-tools/autosync/internal/lockfile"
)

// runLockPath is the run-exclusivity marker, relative to the repository root.
// Deliberately distinct from git's own index.lock.
const runLockPath = ".git/autosync.lock"

// Repository is the git surface the runner drives. *Repo implements it; tests
// substitute fakes.
type Repository interface {
	// CurrentBranch returns the checked-out branch, or ErrDetachedHead.
	CurrentBranch(ctx context.Context) (string, error)

	// EnsureIdentity guarantees a committer identity is configured and
	// returns the effective one.
	EnsureIdentity(ctx context.Context, name, email string) (Signature, error)

	// StageAll stages every working-tree change and reports whether anything
	// is pending.
	StageAll(ctx context.Context) (bool, error)

	// Commit creates a commit from the staged changes.
	Commit(ctx context.Context, msg string, who Signature, opts CommitOpts) (string, error)

	// Fetch updates remote tracking refs from the remote.
	Fetch(ctx context.Context, remote string) error

	// Rebase replays local-only commits on top of the remote tracking head.
	Rebase(ctx context.Context, remote, branch string) error

	// Push sends the branch to the remote.
	Push(ctx context.Context, remote, branch string, opts PushOpts) error

	// RemoteURL and SetRemoteURL read and replace the remote's configured URL.
	RemoteURL(ctx context.Context, remote string) (string, error)
	SetRemoteURL(ctx context.Context, remote, url string) error
}

// Runner executes one synchronization pass over a repository: commit local
// changes, rebase onto upstream, push with a transient credential.
//
// A Runner is single-threaded and drives blocking operations; cross-process
// exclusivity comes from the run lock, not from in-process synchronization.
type Runner struct {
	cfg        Config
	fs         fs.Filesystem
	repo       Repository
	classifier ErrorClassifier
	loc        *time.Location
	now        func() time.Time
}

// RunnerOption customizes Runner construction.
type RunnerOption func(*Runner)

// WithFilesystem substitutes the filesystem the runner operates on. The
// default is the OS filesystem rooted at Config.RepoDir.
func WithFilesystem(fsys fs.Filesystem) RunnerOption {
	return func(r *Runner) { r.fs = fsys }
}

// WithRepository substitutes the repository implementation. The default opens
// the repository at Config.RepoDir on first use.
func WithRepository(repo Repository) RunnerOption {
	return func(r *Runner) { r.repo = repo }
}

// WithClassifier substitutes the error classifier used to distinguish
// transient environmental failures from real ones.
func WithClassifier(c ErrorClassifier) RunnerOption {
	return func(r *Runner) { r.classifier = c }
}

// NewRunner builds a Runner from the Config, applying defaults and validating.
func NewRunner(cfg Config, opts ...RunnerOption) (*Runner, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, WrapError(err, "invalid config")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, WrapErrorf(err, "invalid timezone %q", cfg.Timezone)
	}

	r := &Runner{
		cfg:        cfg,
		classifier: SignatureClassifier{},
		loc:        loc,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.fs == nil {
		r.fs = billyfs.NewOSFS(cfg.RepoDir)
	}

	return r, nil
}

// Run executes one synchronization pass.
//
// Skips (disabled, lock contention, transient network, racing index.lock) are
// reported in the Result with a nil error: they are normal operation for
// unattended jobs, not conditions to alarm on. Genuinely unsafe conditions
// (live foreign lock, rebase conflict, missing credential) come back as
// errors. The run lock is released and the remote URL restored on every exit
// path.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	log := clog.FromContext(ctx)

	if r.cfg.Disabled {
		log.Infof("skipping: %s", SkipDisabled)
		return skipped(SkipDisabled), nil
	}

	if r.cfg.Token == "" {
		return Result{}, WrapError(ErrMissingToken, "set GITHUB_TOKEN or enable SKIP_PUSH")
	}

	lock := lockfile.New(r.fs, runLockPath, r.cfg.StaleLockAge)
	release, err := lock.Acquire(ctx, r.cfg.LockTimeout)
	if err != nil {
		if errors.Is(err, lockfile.ErrHeld) {
			log.Infof("skipping: %s", SkipLockHeld)
			return skipped(SkipLockHeld), nil
		}
		return Result{}, WrapError(err, "failed to acquire run lock")
	}
	defer release()

	if err := clearStaleIndexLock(ctx, r.fs, r.now(), r.cfg.StaleLockAge); err != nil {
		return Result{}, err
	}

	repo, err := r.repository(ctx)
	if err != nil {
		return Result{}, err
	}

	who, err := repo.EnsureIdentity(ctx, r.cfg.UserName, r.cfg.UserEmail)
	if err != nil {
		return Result{}, err
	}

	var res Result

	dirty, err := repo.StageAll(ctx)
	if err != nil {
		return Result{}, err
	}
	if dirty {
		who.When = r.now()
		msg := FormatMessage(r.cfg.MessageFormat, who.When, r.loc)
		hash, err := repo.Commit(ctx, msg, who, CommitOpts{})
		if err != nil && !errors.Is(err, ErrEmptyCommit) {
			return Result{}, err
		}
		if hash != "" {
			res.CommitHash = hash
			log.Infof("committed local changes as %s", hash)
		}
	}

	branch, err := r.resolveBranch(ctx, repo)
	if err != nil {
		return Result{}, err
	}
	res.Branch = branch

	if err := repo.Fetch(ctx, r.cfg.Remote); err != nil && !errors.Is(err, ErrAlreadyUpToDate) {
		switch r.classifier.Classify(err) {
		case ClassTransientNetwork:
			log.Warnf("fetch hit a transient network condition (%v); skipping", err)
			return skipped(SkipTransientNetwork), nil
		case ClassIndexLocked:
			log.Warnf("fetch raced with another git operation (%v); skipping", err)
			return skipped(SkipIndexLocked), nil
		default:
			return Result{}, WrapErrorf(err, "failed to fetch %s", r.cfg.Remote)
		}
	}

	if err := repo.Rebase(ctx, r.cfg.Remote, branch); err != nil {
		switch r.classifier.Classify(err) {
		case ClassTransientNetwork:
			log.Warnf("rebase hit a transient network condition (%v); skipping", err)
			return skipped(SkipTransientNetwork), nil
		case ClassIndexLocked:
			log.Warnf("rebase raced with another git operation (%v); skipping", err)
			return skipped(SkipIndexLocked), nil
		case ClassConflict:
			if errors.Is(err, ErrRebaseConflict) {
				return Result{}, err
			}
			return Result{}, WrapError(ErrRebaseConflict, err.Error())
		default:
			return Result{}, WrapErrorf(err, "failed to rebase onto %s/%s", r.cfg.Remote, branch)
		}
	}

	if err := r.push(ctx, repo, branch); err != nil {
		return Result{}, err
	}

	res.Outcome = OutcomeSuccess
	res.Pushed = true
	log.Infof("pushed to %s/%s", r.cfg.Remote, branch)
	return res, nil
}

// repository returns the injected Repository or opens the one at RepoDir.
func (r *Runner) repository(ctx context.Context) (Repository, error) {
	if r.repo != nil {
		return r.repo, nil
	}

	repo, err := Open(ctx, &Options{FS: r.fs})
	if err != nil {
		return nil, WrapErrorf(err, "failed to open repository at %q", r.cfg.RepoDir)
	}

	r.repo = repo
	return repo, nil
}

// resolveBranch picks the branch to synchronize: the configured override, the
// current branch, or the fallback when HEAD is detached.
func (r *Runner) resolveBranch(ctx context.Context, repo Repository) (string, error) {
	if r.cfg.Branch != "" {
		return r.cfg.Branch, nil
	}

	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		if errors.Is(err, ErrDetachedHead) {
			return r.cfg.FallbackBranch, nil
		}
		return "", WrapError(err, "failed to resolve branch")
	}

	return branch, nil
}

// push runs the push critical section: swap in the credentialed URL, push,
// retry once with an explicit refspec that records upstream tracking, and
// restore the original URL no matter what happened.
func (r *Runner) push(ctx context.Context, repo Repository, branch string) error {
	original, err := repo.RemoteURL(ctx, r.cfg.Remote)
	if err != nil {
		return err
	}

	httpsURL, err := NormalizeHTTPS(original)
	if err != nil {
		return err
	}

	pushURL, err := CredentialURL(httpsURL, r.cfg.Token)
	if err != nil {
		return err
	}

	if err := repo.SetRemoteURL(ctx, r.cfg.Remote, pushURL); err != nil {
		return WrapError(err, "failed to set push URL")
	}
	defer func() {
		// The credential must never outlive the push, even on failure.
		if restoreErr := repo.SetRemoteURL(ctx, r.cfg.Remote, original); restoreErr != nil {
			clog.FromContext(ctx).Errorf("failed to restore remote URL: %v", restoreErr)
		}
	}()

	err = repo.Push(ctx, r.cfg.Remote, branch, PushOpts{})
	if err == nil || errors.Is(err, ErrAlreadyUpToDate) {
		return nil
	}

	retryErr := repo.Push(ctx, r.cfg.Remote, branch, PushOpts{ExplicitRefspec: true, SetUpstream: true})
	if retryErr == nil || errors.Is(retryErr, ErrAlreadyUpToDate) {
		return nil
	}

	return WrapErrorf(ErrPushRejected, "plain push failed (%v); refspec retry failed (%v)", err, retryErr)
}
