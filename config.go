// Package autosync provides runner configuration.
//
// All ambient input (environment variables) is resolved once, at the
// boundary, into an explicit Config. The runner itself never reads the
// environment.
package autosync

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	// DefaultLockTimeout bounds the wait for the run-exclusivity lock.
	// Contention past this point means another run is active and this one
	// should skip, not queue.
	DefaultLockTimeout = 10 * time.Second

	// DefaultStaleLockAge is how old the repository's own index.lock must be
	// before it is presumed abandoned by a crashed git process and removed.
	DefaultStaleLockAge = 30 * time.Minute

	// DefaultFallbackBranch is pushed to when HEAD is detached and no branch
	// was configured.
	DefaultFallbackBranch = "main"
)

// Config carries everything a sync run needs. Zero values are filled in by
// applyDefaults; FromEnv populates it from the process environment.
type Config struct {
	// RepoDir is the working copy to synchronize.
	RepoDir string `env:"SYNC_REPO_DIR"`

	// Remote names the remote to fetch from and push to.
	Remote string `env:"SYNC_REMOTE,default=origin"`

	// Branch overrides branch resolution. Empty means the current branch,
	// falling back to FallbackBranch when HEAD is detached.
	Branch string `env:"SYNC_BRANCH"`

	// FallbackBranch is used when HEAD is detached and Branch is empty.
	FallbackBranch string `env:"SYNC_FALLBACK_BRANCH,default=main"`

	// Disabled short-circuits the whole run into a skip with no mutation.
	// The escape hatch for environments where pushing is undesirable.
	Disabled bool `env:"SKIP_PUSH"`

	// Token is the push credential, spliced into the push URL for the
	// duration of the push only. Required unless Disabled.
	Token string `env:"GITHUB_TOKEN"`

	// UserName and UserEmail override the default committer identity used
	// when the repository has none configured.
	UserName  string `env:"GIT_USER_NAME"`
	UserEmail string `env:"GIT_USER_EMAIL"`

	// LockTimeout bounds the run-exclusivity lock acquire.
	LockTimeout time.Duration `env:"SYNC_LOCK_TIMEOUT,default=10s"`

	// StaleLockAge is the index.lock staleness threshold.
	StaleLockAge time.Duration `env:"SYNC_STALE_LOCK_AGE,default=30m"`

	// Timezone renders commit timestamps; must be an IANA zone name.
	Timezone string `env:"SYNC_TIMEZONE,default=Asia/Tehran"`

	// MessageFormat is the commit message template with one %s verb for the
	// timestamp.
	MessageFormat string `env:"SYNC_MESSAGE_FORMAT"`

	// RequireConventional validates the rendered commit message as a
	// conventional commit at config validation time.
	RequireConventional bool `env:"SYNC_REQUIRE_CONVENTIONAL"`
}

// FromEnv resolves a Config from the process environment.
func FromEnv(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, WrapError(err, "failed to process environment")
	}
	return cfg, nil
}

// Validate checks that the Config is coherent. Token presence is checked by
// the runner (a missing token is a run failure, not a construction failure),
// but structural problems fail here.
func (c *Config) Validate() error {
	if c.RepoDir == "" {
		return WrapError(ErrInvalidRef, "RepoDir is required")
	}

	if c.LockTimeout < 0 {
		return WrapError(ErrInvalidRef, "LockTimeout cannot be negative")
	}

	if c.StaleLockAge < 0 {
		return WrapError(ErrInvalidRef, "StaleLockAge cannot be negative")
	}

	if _, err := time.LoadLocation(c.timezone()); err != nil {
		return WrapErrorf(err, "invalid timezone %q", c.Timezone)
	}

	if c.RequireConventional {
		sample := FormatMessage(c.MessageFormat, time.Now(), time.UTC)
		if err := ValidateConventional(sample); err != nil {
			return err
		}
	}

	return nil
}

// applyDefaults sets default values for any unset fields.
func (c *Config) applyDefaults() {
	if c.Remote == "" {
		c.Remote = DefaultRemoteName
	}
	if c.FallbackBranch == "" {
		c.FallbackBranch = DefaultFallbackBranch
	}
	if c.LockTimeout == 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.StaleLockAge == 0 {
		c.StaleLockAge = DefaultStaleLockAge
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.MessageFormat == "" {
		c.MessageFormat = DefaultMessageFormat
	}
}

func (c *Config) timezone() string {
	if c.Timezone == "" {
		return DefaultTimezone
	}
	return c.Timezone
}
