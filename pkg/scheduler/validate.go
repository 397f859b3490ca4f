package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronExpression is the fast-validation path the scheduled node
// catalog entry's custom_validate hook calls while a workflow is being
// authored: a 5-field standard expression, or a 6-field expression with
// a leading seconds field, the same two shapes Scheduler.Schedule
// accepts at runtime.
func ValidateCronExpression(expr string) error {
	fields := strings.Fields(expr)
	switch len(fields) {
	case 5:
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		return nil
	case 6:
		if _, err := cron.ParseStandard(strings.Join(fields[1:], " ")); err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("cron expression must have 5 or 6 whitespace-separated fields, got %d", len(fields))
	}
}

// ValidateTimezone accepts the empty string (UTC default) or any name
// the IANA database recognizes.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return nil
}
