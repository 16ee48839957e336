// Package autosync provides commit message construction.
package autosync

import (
	"fmt"
	"time"

	// Timestamp rendering must resolve named zones even on hosts without a
	// system tz database (scratch containers, minimal images).
	_ "time/tzdata"

	"github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"
)

const (
	// DefaultMessageFormat is the commit message template. The single %s verb
	// receives the timestamp.
	DefaultMessageFormat = "Automated sync: %s"

	// DefaultTimezone is the fixed zone used to render commit timestamps, so
	// audit trails are deterministic across multi-region deployments.
	DefaultTimezone = "Asia/Tehran"

	// timestampLayout renders a human-readable, locale-independent timestamp.
	timestampLayout = "2006-01-02 15:04:05"
)

// FormatMessage renders the commit message for an automated sync commit from
// the given template and instant, with the timestamp expressed in loc.
func FormatMessage(format string, now time.Time, loc *time.Location) string {
	if format == "" {
		format = DefaultMessageFormat
	}
	return fmt.Sprintf(format, now.In(loc).Format(timestampLayout))
}

// ValidateConventional checks that a rendered commit message parses as a
// conventional commit. Deployments that enforce commit hygiene on the synced
// repository enable this at config validation time so a bad template fails
// fast instead of polluting history.
func ValidateConventional(message string) error {
	machine := parser.NewMachine(conventionalcommits.WithTypes(conventionalcommits.TypesConventional))
	if _, err := machine.Parse([]byte(message)); err != nil {
		return WrapErrorf(err, "message %q is not a conventional commit", message)
	}
	return nil
}
