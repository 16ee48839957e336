package autosync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	t.Run("wraps with context", func(t *testing.T) {
		err := WrapError(ErrRebaseConflict, "rebasing onto origin/main")
		assert.ErrorIs(t, err, ErrRebaseConflict)
		assert.Equal(t, "rebasing onto origin/main: rebase conflict requires manual resolution", err.Error())
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapError(nil, "context"))
	})
}

func TestWrapErrorf(t *testing.T) {
	t.Run("formats context", func(t *testing.T) {
		err := WrapErrorf(ErrRemoteMissing, "remote %q", "origin")
		assert.ErrorIs(t, err, ErrRemoteMissing)
		assert.Contains(t, err.Error(), `remote "origin"`)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapErrorf(nil, "remote %q", "origin"))
	})
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrMissingToken,
		ErrConcurrentOperation,
		ErrRebaseConflict,
		ErrPushRejected,
		ErrAlreadyUpToDate,
		ErrNotFastForward,
		ErrDetachedHead,
		ErrRemoteMissing,
		ErrEmptyCommit,
		ErrInvalidRef,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}
