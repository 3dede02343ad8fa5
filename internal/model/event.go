package model

import "time"

type EventStatus string

const (
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusTentative EventStatus = "tentative"
	EventStatusCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusConfirmed, EventStatusTentative, EventStatusCancelled:
		return true
	}
	return false
}

// EventContent is the part of an event that occurrences may override.
type EventContent struct {
	Summary     string
	Description string
	Location    string
	Status      EventStatus
}

// MasterEvent is the stored row a recurring series is expanded from.
type MasterEvent struct {
	ID         string
	UID        string
	CalendarID string
	From       time.Time
	To         time.Time
	RRule      string
	ExDates    map[int64]struct{}
	Sequence   int
	DeletedAt  *time.Time
	EventContent
}

func (m *MasterEvent) Recurring() bool {
	return m.RRule != ""
}

func (m *MasterEvent) Duration() time.Duration {
	return m.To.Sub(m.From)
}

func (m *MasterEvent) Excluded(t time.Time) bool {
	_, ok := m.ExDates[t.Unix()]
	return ok
}

func (m *MasterEvent) Exclude(t time.Time) {
	if m.ExDates == nil {
		m.ExDates = make(map[int64]struct{})
	}
	m.ExDates[t.Unix()] = struct{}{}
}

func (m *MasterEvent) Include(t time.Time) {
	delete(m.ExDates, t.Unix())
}

// ExceptionEvent replaces a single occurrence of a series.
type ExceptionEvent struct {
	ID           string
	UID          string
	CalendarID   string
	RecurrenceID time.Time
	From         time.Time
	To           time.Time
	Sequence     int
	EventContent
}

type SeriesCreate struct {
	From      time.Time
	To        time.Time
	RRule     string
	Attendees []*AttendeeCreate
	EventContent
}

// EventPatch holds optional changes; nil fields are left untouched.
type EventPatch struct {
	Summary     *string
	Description *string
	Location    *string
	Status      *EventStatus
	From        *time.Time
	To          *time.Time
	RRule       *string
}

func (p *EventPatch) ApplyContent(c *EventContent) {
	if p.Summary != nil {
		c.Summary = *p.Summary
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
}

// ApplyTimes returns the new bounds of an occurrence currently spanning
// [from, to). Moving the start keeps the duration unless To is also set.
// Patched bounds are cut to whole seconds, the precision of identities.
func (p *EventPatch) ApplyTimes(from, to time.Time) (time.Time, time.Time) {
	duration := to.Sub(from)
	if p.From != nil {
		from = p.From.UTC().Truncate(time.Second)
		to = from.Add(duration)
	}
	if p.To != nil {
		to = p.To.UTC().Truncate(time.Second)
	}
	return from, to
}

type Scope int

const (
	ScopeThisOnly Scope = iota
	ScopeThisAndFuture
)

func (s Scope) String() string {
	switch s {
	case ScopeThisOnly:
		return "this_only"
	case ScopeThisAndFuture:
		return "this_and_future"
	}
	return "unknown"
}

type DeleteRequest struct {
	Scope Scope
	// Cancel also cancels the occurrence when the removed target is an override.
	Cancel bool
}

// Window is the half-open interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Overlaps(from, to time.Time) bool {
	if !from.Before(w.To) {
		return false
	}
	return to.After(w.From) || !from.Before(w.From)
}

// EventsFilter selects masters. A zero To leaves the time range unbounded.
type EventsFilter struct {
	CalendarID     string
	AttendeeUserID string
	From           time.Time
	To             time.Time
}
