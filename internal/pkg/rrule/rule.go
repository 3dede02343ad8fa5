package rrule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
	"github.com/teambition/rrule-go"
)

const untilFormat = "20060102T150405Z"

var frequencies = map[string]rrule.Frequency{
	"DAILY":   rrule.DAILY,
	"WEEKLY":  rrule.WEEKLY,
	"MONTHLY": rrule.MONTHLY,
	"YEARLY":  rrule.YEARLY,
}

var weekdays = map[string]rrule.Weekday{
	"MO": rrule.MO,
	"TU": rrule.TU,
	"WE": rrule.WE,
	"TH": rrule.TH,
	"FR": rrule.FR,
	"SA": rrule.SA,
	"SU": rrule.SU,
}

// Rule is a parsed recurrence rule in the supported subset of RFC 5545:
// FREQ, INTERVAL, COUNT, UNTIL and BYDAY.
type Rule struct {
	Freq     string
	Interval int
	Count    int
	Until    time.Time
	ByDay    []string
}

// Parse parses rule text. Empty text yields a nil rule.
func Parse(text string) (*Rule, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "RRULE:")
	if text == "" {
		return nil, nil
	}

	r := &Rule{Interval: 1}
	seen := make(map[string]struct{})

	for _, part := range strings.Split(text, ";") {
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, "=")
		if !ok || key == "" || value == "" {
			return nil, invalid(part, "expected KEY=VALUE")
		}
		key = strings.ToUpper(key)

		if _, dup := seen[key]; dup {
			return nil, invalid(part, "duplicate key")
		}
		seen[key] = struct{}{}

		switch key {
		case "FREQ":
			value = strings.ToUpper(value)
			if _, ok := frequencies[value]; !ok {
				return nil, invalid(part, "unsupported frequency")
			}
			r.Freq = value
		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return nil, invalid(part, "interval must be a positive integer")
			}
			r.Interval = n
		case "COUNT":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return nil, invalid(part, "count must be a positive integer")
			}
			r.Count = n
		case "UNTIL":
			t, err := parseUntil(value)
			if err != nil {
				return nil, invalid(part, "until must be a UTC date-time")
			}
			r.Until = t
		case "BYDAY":
			for _, day := range strings.Split(strings.ToUpper(value), ",") {
				if _, ok := weekdays[day]; !ok {
					return nil, invalid(part, fmt.Sprintf("unknown weekday %q", day))
				}
				r.ByDay = append(r.ByDay, day)
			}
		default:
			return nil, invalid(part, "unsupported key")
		}
	}

	if r.Freq == "" {
		return nil, invalid(text, "FREQ is required")
	}
	if r.Count > 0 && !r.Until.IsZero() {
		return nil, invalid(text, "COUNT and UNTIL are mutually exclusive")
	}

	return r, nil
}

// String renders the rule in a canonical key order.
func (r *Rule) String() string {
	parts := []string{"FREQ=" + r.Freq}
	if r.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.Interval))
	}
	if r.Count > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(r.Count))
	}
	if !r.Until.IsZero() {
		parts = append(parts, "UNTIL="+r.Until.UTC().Format(untilFormat))
	}
	if len(r.ByDay) > 0 {
		parts = append(parts, "BYDAY="+strings.Join(r.ByDay, ","))
	}
	return strings.Join(parts, ";")
}

func (r *Rule) build(start time.Time) (*rrule.RRule, error) {
	opt := rrule.ROption{
		Freq:     frequencies[r.Freq],
		Interval: r.Interval,
		Count:    r.Count,
		Until:    r.Until,
		Dtstart:  start.UTC(),
	}
	for _, day := range r.ByDay {
		opt.Byweekday = append(opt.Byweekday, weekdays[day])
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, invalid(r.String(), err.Error())
	}

	return rule, nil
}

func parseUntil(value string) (time.Time, error) {
	if t, err := time.Parse(untilFormat, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("20060102", value); err == nil {
		return t.Add(24*time.Hour - time.Second), nil
	}
	return time.Parse(time.RFC3339, value)
}

func invalid(fragment, reason string) error {
	return &model.InvalidRRuleError{Fragment: fragment, Reason: reason}
}
