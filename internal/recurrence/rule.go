package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownRule indicates a recurrence rule string that the calculator
// does not recognize. Callers never receive a guessed date.
var ErrUnknownRule = errors.New("unknown recurrence rule")

// Next computes the next due date for a recurrence rule from a base date.
//
// Rules have the form "frequency[:qualifier]":
//
//	daily                   base + 1 day
//	weekly                  base + 7 days
//	monthly                 same day next month, clamped to month length
//	monthly:<d>             next occurrence of day d, clamped (may fall in
//	                        base's own month when day d is still ahead)
//	monthly:last_day        last calendar day of the month after base
//	monthly:last_biz_day    last weekday of the month after base
//	quarterly               base + 90 days (approximation, not a true
//	                        quarter boundary)
//	quarterly:last_biz_day  last weekday of the next quarter-end month
//	annually                base + 365 days (flat; no leap-year handling)
//
// Calendar-anchored forms (monthly and quarterly:last_biz_day) return
// midnight in base's location; offset forms preserve base's clock.
func Next(rule string, base time.Time) (time.Time, error) {
	freq, qual, hasQual := strings.Cut(rule, ":")
	switch freq {
	case "daily":
		if hasQual {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRule, rule)
		}
		return base.AddDate(0, 0, 1), nil
	case "weekly":
		if hasQual {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRule, rule)
		}
		return base.AddDate(0, 0, 7), nil
	case "monthly":
		return nextMonthly(rule, qual, hasQual, base)
	case "quarterly":
		return nextQuarterly(rule, qual, hasQual, base)
	case "annually":
		if hasQual {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRule, rule)
		}
		return base.AddDate(0, 0, 365), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRule, rule)
	}
}

func nextMonthly(rule, qual string, hasQual bool, base time.Time) (time.Time, error) {
	year, month, day := base.Date()

	if !hasQual {
		return clampedDate(year, month+1, day, base.Location()), nil
	}

	switch qual {
	case "last_day":
		return lastDayOfMonth(year, month+1, base.Location()), nil
	case "last_biz_day":
		return backToWeekday(lastDayOfMonth(year, month+1, base.Location())), nil
	}

	target, err := strconv.Atoi(qual)
	if err != nil || target < 1 || target > 31 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRule, rule)
	}

	// Next occurrence of the target day strictly after base; day 31 in
	// February clamps to 28/29.
	candidate := clampedDate(year, month, target, base.Location())
	if candidate.After(base) {
		return candidate, nil
	}
	return clampedDate(year, month+1, target, base.Location()), nil
}

func nextQuarterly(rule, qual string, hasQual bool, base time.Time) (time.Time, error) {
	if !hasQual {
		return base.AddDate(0, 0, 90), nil
	}
	if qual != "last_biz_day" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRule, rule)
	}

	// Quarter-end month of base's own quarter, or the next one if its last
	// business day has already passed.
	year, month, _ := base.Date()
	quarterEnd := time.Month(((int(month)-1)/3)*3 + 3)
	candidate := backToWeekday(lastDayOfMonth(year, quarterEnd, base.Location()))
	if candidate.After(base) {
		return candidate, nil
	}
	return backToWeekday(lastDayOfMonth(year, quarterEnd+3, base.Location())), nil
}

// clampedDate builds a date with the day clamped to the month's length.
// Month may be out of range; it normalizes the way time.Date does.
func clampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := lastDayOfMonth(first.Year(), first.Month(), loc)
	if day > last.Day() {
		day = last.Day()
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

// lastDayOfMonth returns the last calendar day of the given month.
func lastDayOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
}

// backToWeekday walks backward from t to the nearest non-weekend day.
func backToWeekday(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, -1)
	}
	return t
}
