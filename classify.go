// Package autosync provides error classification for network operations.
package autosync

import (
	"errors"
	"net"
	"strings"
)

// ErrorClass describes how the runner should react to a failed fetch, rebase,
// or push.
type ErrorClass int8

const (
	// ClassFatal means the error is not a recognized environmental condition
	// and must be propagated.
	ClassFatal ErrorClass = iota

	// ClassTransientNetwork means name resolution or a similar low-resource
	// network condition failed; the run is skipped, not failed.
	ClassTransientNetwork

	// ClassIndexLocked means the repository's index.lock surfaced mid-run;
	// another git operation raced in and the run is skipped.
	ClassIndexLocked

	// ClassConflict means a merge/rebase conflict signature was detected and
	// manual resolution is required.
	ClassConflict
)

// String returns a human-readable string representation of the ErrorClass.
func (c ErrorClass) String() string {
	switch c {
	case ClassFatal:
		return "fatal"
	case ClassTransientNetwork:
		return "transient-network"
	case ClassIndexLocked:
		return "index-locked"
	case ClassConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// ErrorClassifier maps errors from git operations to an ErrorClass. The
// default implementation matches known message signatures; deployments whose
// git stack reports errors differently can plug in their own.
type ErrorClassifier interface {
	Classify(err error) ErrorClass
}

// SignatureClassifier classifies errors by well-known signatures: DNS
// resolution failures from the net package, the historical
// "getaddrinfo thread failed to start" low-resource message, index.lock
// contention, and conflict/merge wording.
type SignatureClassifier struct{}

// Classify implements ErrorClassifier.
func (SignatureClassifier) Classify(err error) ErrorClass {
	if err == nil {
		return ClassFatal
	}

	if errors.Is(err, ErrRebaseConflict) {
		return ClassConflict
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ClassTransientNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "getaddrinfo"),
		strings.Contains(msg, "no such host"):
		return ClassTransientNetwork
	case strings.Contains(msg, "index.lock"):
		return ClassIndexLocked
	case strings.Contains(msg, "conflict"), strings.Contains(msg, "merge"):
		return ClassConflict
	default:
		return ClassFatal
	}
}
