// Package autosync provides committer identity management.
package autosync

import (
	"context"

	"github.com/go-git/go-git/v5/config"
)

const (
	// DefaultUserName is the committer name used when no identity is
	// configured and no override is supplied.
	DefaultUserName = "automation"

	// DefaultUserEmail is the committer email used when no identity is
	// configured and no override is supplied.
	DefaultUserEmail = "automation@example.com"
)

// EnsureIdentity makes sure user.name and user.email are configured, writing
// missing values to the repository-local config. Values already present in any
// config scope (local, global, or system) are never clobbered. The name and
// email arguments override the built-in defaults for whichever values are
// missing; pass empty strings to use the defaults.
//
// It returns the effective committer identity for subsequent commits.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) EnsureIdentity(ctx context.Context, name, email string) (Signature, error) {
	// Check context cancellation
	if err := ctx.Err(); err != nil {
		return Signature{}, WrapError(err, "context cancelled")
	}

	if name == "" {
		name = DefaultUserName
	}
	if email == "" {
		email = DefaultUserEmail
	}

	merged, err := r.repo.ConfigScoped(config.SystemScope)
	if err != nil {
		return Signature{}, WrapError(err, "failed to read merged config")
	}

	effective := Signature{
		Name:  merged.User.Name,
		Email: merged.User.Email,
	}

	if effective.Name != "" && effective.Email != "" {
		return effective, nil
	}

	local, err := r.repo.Config()
	if err != nil {
		return Signature{}, WrapError(err, "failed to read repository config")
	}

	if effective.Name == "" {
		local.User.Name = name
		effective.Name = name
	}
	if effective.Email == "" {
		local.User.Email = email
		effective.Email = email
	}

	if err := r.repo.SetConfig(local); err != nil {
		return Signature{}, WrapError(err, "failed to write repository config")
	}

	return effective, nil
}
