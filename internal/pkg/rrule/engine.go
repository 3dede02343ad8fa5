package rrule

import (
	"fmt"
	"time"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

const defaultMaxOccurrences = 5000

// Engine expands rules into occurrence instants. It holds no state besides
// its cap, so every call is a pure function of its arguments.
type Engine struct {
	maxOccurrences int
}

func NewEngine(maxOccurrences int) *Engine {
	if maxOccurrences <= 0 {
		maxOccurrences = defaultMaxOccurrences
	}
	return &Engine{maxOccurrences: maxOccurrences}
}

// Expand returns the instants of rule starting at seriesStart that fall in
// the window, in order. An empty rule yields seriesStart alone. Instants have
// whole-second precision.
func (e *Engine) Expand(text string, seriesStart time.Time, w model.Window) ([]time.Time, error) {
	seriesStart = seriesStart.Truncate(time.Second)

	r, err := Parse(text)
	if err != nil {
		return nil, err
	}

	if r == nil {
		if !seriesStart.Before(w.From) && seriesStart.Before(w.To) {
			return []time.Time{seriesStart}, nil
		}
		return nil, nil
	}

	if !w.From.Before(w.To) {
		return nil, nil
	}

	rule, err := r.build(seriesStart)
	if err != nil {
		return nil, err
	}

	from := w.From
	if from.Before(seriesStart) {
		from = seriesStart
	}

	var res []time.Time
	for _, t := range rule.Between(from, w.To, true) {
		if !t.Before(w.To) {
			break
		}
		res = append(res, t)
		if len(res) == e.maxOccurrences {
			break
		}
	}

	return res, nil
}

// IsOccurrence reports whether instant is produced by the rule, ignoring any
// exclusions recorded on the master.
func (e *Engine) IsOccurrence(text string, seriesStart, instant time.Time) (bool, error) {
	seriesStart = seriesStart.Truncate(time.Second)

	r, err := Parse(text)
	if err != nil {
		return false, err
	}

	if r == nil {
		return instant.Equal(seriesStart), nil
	}

	if instant.Before(seriesStart) {
		return false, nil
	}

	rule, err := r.build(seriesStart)
	if err != nil {
		return false, err
	}

	return rule.After(instant, true).Equal(instant), nil
}

// Truncate rewrites the rule so that its last occurrence is strictly before
// the given instant.
func (e *Engine) Truncate(text string, before time.Time) (string, error) {
	r, err := Parse(text)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", model.ErrNotRecurring
	}

	r.Count = 0
	r.Until = before.UTC().Add(-time.Second)

	return r.String(), nil
}

// Continue returns the rule for a series forked off at instant: same
// frequency, interval and weekdays, keeping the original end bound. A COUNT
// bound becomes the number of occurrences still left at instant.
func (e *Engine) Continue(text string, seriesStart, instant time.Time) (string, error) {
	seriesStart = seriesStart.Truncate(time.Second)

	r, err := Parse(text)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", model.ErrNotRecurring
	}

	if r.Count > 0 {
		rule, err := r.build(seriesStart)
		if err != nil {
			return "", err
		}

		before := 0
		for _, t := range rule.Between(seriesStart, instant, true) {
			if t.Before(instant) {
				before++
			}
		}

		remaining := r.Count - before
		if remaining < 1 {
			return "", fmt.Errorf("no occurrences left at %v: %w", instant, model.ErrInvalidRecurrenceID)
		}
		r.Count = remaining
	}

	return r.String(), nil
}
