package model

import "time"

// OccurrenceState classifies a single instant of a recurring series.
// Implementations are Materialized, Cancelled and Overridden.
type OccurrenceState interface {
	Instant() time.Time
	occurrenceState()
}

// Materialized occurrences exist only as a product of the rule.
type Materialized struct {
	Master *MasterEvent
	At     time.Time
}

// Cancelled occurrences are listed in the master's exdate.
type Cancelled struct {
	Master *MasterEvent
	At     time.Time
}

// Overridden occurrences are replaced by an exception row.
type Overridden struct {
	Master    *MasterEvent
	Exception *ExceptionEvent
}

func (s Materialized) Instant() time.Time { return s.At }
func (s Cancelled) Instant() time.Time    { return s.At }
func (s Overridden) Instant() time.Time   { return s.Exception.RecurrenceID }

func (Materialized) occurrenceState() {}
func (Cancelled) occurrenceState()    {}
func (Overridden) occurrenceState()   {}

// Classify returns the state of the occurrence at instant. exception is the
// override stored for that instant, if any.
func Classify(master *MasterEvent, exception *ExceptionEvent, instant time.Time) OccurrenceState {
	switch {
	case exception != nil:
		return Overridden{Master: master, Exception: exception}
	case master.Excluded(instant):
		return Cancelled{Master: master, At: instant}
	default:
		return Materialized{Master: master, At: instant}
	}
}

type OccurrenceKind int

const (
	OccurrenceKindSingle OccurrenceKind = iota
	OccurrenceKindVirtual
	OccurrenceKindException
)

func (k OccurrenceKind) String() string {
	switch k {
	case OccurrenceKindSingle:
		return "single"
	case OccurrenceKindVirtual:
		return "virtual"
	case OccurrenceKindException:
		return "exception"
	}
	return "unknown"
}

// Occurrence is what callers read: a non-recurring master, a rule-derived
// virtual instance, or an exception row.
type Occurrence struct {
	ID           string
	UID          string
	MasterID     string
	Kind         OccurrenceKind
	From         time.Time
	To           time.Time
	RRule        string
	RecurrenceID *time.Time
	Sequence     int
	EventContent
}

// Recurring reports whether the occurrence belongs to a series with a rule.
func (o *Occurrence) Recurring() bool {
	return o.RRule != "" || o.RecurrenceID != nil
}

func OccurrenceFromMaster(m *MasterEvent) *Occurrence {
	return &Occurrence{
		ID:           m.ID,
		UID:          m.UID,
		MasterID:     m.ID,
		Kind:         OccurrenceKindSingle,
		From:         m.From,
		To:           m.To,
		RRule:        m.RRule,
		Sequence:     m.Sequence,
		EventContent: m.EventContent,
	}
}

// OccurrenceFromInstant projects the master onto one of its instants. The
// result is never stored.
func OccurrenceFromInstant(m *MasterEvent, id string, instant time.Time) *Occurrence {
	recurrenceID := instant
	return &Occurrence{
		ID:           id,
		UID:          m.UID,
		MasterID:     m.ID,
		Kind:         OccurrenceKindVirtual,
		From:         instant,
		To:           instant.Add(m.Duration()),
		RRule:        m.RRule,
		RecurrenceID: &recurrenceID,
		Sequence:     m.Sequence,
		EventContent: m.EventContent,
	}
}

func OccurrenceFromException(e *ExceptionEvent) *Occurrence {
	recurrenceID := e.RecurrenceID
	return &Occurrence{
		ID:           e.ID,
		UID:          e.UID,
		Kind:         OccurrenceKindException,
		From:         e.From,
		To:           e.To,
		RecurrenceID: &recurrenceID,
		Sequence:     e.Sequence,
		EventContent: e.EventContent,
	}
}
