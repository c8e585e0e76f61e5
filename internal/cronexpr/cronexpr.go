// Package cronexpr evaluates classic 5-field cron expressions
// (minute hour day-of-month month day-of-week) against concrete instants.
//
// The dialect is deliberately narrow: a field is a wildcard, a base/step
// pair, a comma list of integers, an inclusive range, or a bare integer.
// Day-of-week runs 0=Sunday through 6=Saturday; 7 is not an alias for
// Sunday and never matches.
package cronexpr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrBadExpression is returned for expressions outside the supported dialect
var ErrBadExpression = errors.New("invalid schedule expression")

const fieldCount = 5

var fieldNames = [fieldCount]string{"minute", "hour", "day-of-month", "month", "day-of-week"}

// Matches reports whether t satisfies all five fields of expr.
// It is a pure function over (expr, t).
func Matches(expr string, t time.Time) (bool, error) {
	fields := strings.Fields(expr)
	if len(fields) != fieldCount {
		return false, fmt.Errorf("%w: %q has %d fields, want %d", ErrBadExpression, expr, len(fields), fieldCount)
	}

	// Go's time.Weekday already numbers Sunday as 0, matching the classic
	// cron convention, so day-of-week needs no conversion.
	values := [fieldCount]int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}

	for i, field := range fields {
		ok, err := fieldMatches(field, values[i])
		if err != nil {
			return false, fmt.Errorf("%s field: %w", fieldNames[i], err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Validate parses all five fields eagerly so malformed expressions are
// rejected at registration rather than at tick time.
func Validate(expr string) error {
	fields := strings.Fields(expr)
	if len(fields) != fieldCount {
		return fmt.Errorf("%w: %q has %d fields, want %d", ErrBadExpression, expr, len(fields), fieldCount)
	}
	for i, field := range fields {
		if _, err := fieldMatches(field, 0); err != nil {
			return fmt.Errorf("%s field: %w", fieldNames[i], err)
		}
	}
	return nil
}

// fieldMatches evaluates a single field expression against a concrete value
func fieldMatches(expr string, value int) (bool, error) {
	if expr == "*" {
		return true, nil
	}

	if basePart, stepPart, found := strings.Cut(expr, "/"); found {
		base := 0
		if basePart != "*" {
			b, err := strconv.Atoi(basePart)
			if err != nil {
				return false, fmt.Errorf("%w: bad step base in %q", ErrBadExpression, expr)
			}
			base = b
		}
		step, err := strconv.Atoi(stepPart)
		if err != nil || step <= 0 {
			return false, fmt.Errorf("%w: bad step in %q", ErrBadExpression, expr)
		}
		return value >= base && (value-base)%step == 0, nil
	}

	if strings.Contains(expr, ",") {
		member := false
		for _, part := range strings.Split(expr, ",") {
			n, err := strconv.Atoi(part)
			if err != nil {
				return false, fmt.Errorf("%w: bad list member %q in %q", ErrBadExpression, part, expr)
			}
			if n == value {
				member = true
			}
		}
		return member, nil
	}

	if loPart, hiPart, found := strings.Cut(expr, "-"); found {
		lo, err := strconv.Atoi(loPart)
		if err != nil {
			return false, fmt.Errorf("%w: bad range start in %q", ErrBadExpression, expr)
		}
		hi, err := strconv.Atoi(hiPart)
		if err != nil {
			return false, fmt.Errorf("%w: bad range end in %q", ErrBadExpression, expr)
		}
		return lo <= value && value <= hi, nil
	}

	n, err := strconv.Atoi(expr)
	if err != nil {
		return false, fmt.Errorf("%w: unrecognized field %q", ErrBadExpression, expr)
	}
	return value == n, nil
}

var nextParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Next returns the advisory next firing time after t, or nil when the
// standard parser rejects the expression. The tick loop never consults it;
// firing decisions always come from Matches.
func Next(expr string, t time.Time) *time.Time {
	schedule, err := nextParser.Parse(expr)
	if err != nil {
		return nil
	}
	next := schedule.Next(t)
	if next.IsZero() {
		return nil
	}
	return &next
}
