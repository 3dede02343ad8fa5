package ics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

const (
	productID  = "-//recurring-calendar//EN"
	timeLayout = "20060102T150405Z"

	propertyRecurrenceID = "RECURRENCE-ID"
)

// Export renders series as one VCALENDAR. A master becomes a VEVENT with its
// RRULE and EXDATEs; every exception becomes a VEVENT with the same UID and
// a RECURRENCE-ID naming the instant it replaces.
func Export(series []*model.Series, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, s := range series {
		addMaster(cal, s, stamp)
		for _, e := range s.Exceptions {
			addException(cal, s, e, stamp)
		}
	}

	return cal.Serialize()
}

func addMaster(cal *ical.Calendar, s *model.Series, stamp time.Time) {
	m := s.Master

	ve := cal.AddEvent(m.UID)
	ve.SetDtStampTime(stamp.UTC())
	ve.SetStartAt(m.From.UTC())
	ve.SetEndAt(m.To.UTC())
	setContent(ve, m.EventContent, m.Sequence)

	if m.Recurring() {
		ve.AddProperty(ical.ComponentPropertyRrule, m.RRule)

		exDates := make([]int64, 0, len(m.ExDates))
		for e := range m.ExDates {
			exDates = append(exDates, e)
		}
		sort.Slice(exDates, func(i, j int) bool { return exDates[i] < exDates[j] })
		for _, e := range exDates {
			ve.AddProperty(ical.ComponentPropertyExdate, time.Unix(e, 0).UTC().Format(timeLayout))
		}
	}

	addAttendees(ve, s.Attendees)
}

func addException(cal *ical.Calendar, s *model.Series, e *model.ExceptionEvent, stamp time.Time) {
	ve := cal.AddEvent(e.UID)
	ve.SetProperty(propertyRecurrenceID, e.RecurrenceID.UTC().Format(timeLayout))
	ve.SetDtStampTime(stamp.UTC())
	ve.SetStartAt(e.From.UTC())
	ve.SetEndAt(e.To.UTC())
	setContent(ve, e.EventContent, e.Sequence)
	addAttendees(ve, s.Attendees)
}

func setContent(ve *ical.VEvent, c model.EventContent, sequence int) {
	ve.SetProperty(ical.ComponentPropertySequence, strconv.Itoa(sequence))
	if c.Summary != "" {
		ve.SetSummary(c.Summary)
	}
	if c.Description != "" {
		ve.SetDescription(c.Description)
	}
	if c.Location != "" {
		ve.SetLocation(c.Location)
	}
	if c.Status != "" {
		ve.SetProperty(ical.ComponentPropertyStatus, strings.ToUpper(string(c.Status)))
	}
}

var participationStatuses = map[model.AttendeeStatus]ical.ParticipationStatus{
	model.AttendeeStatusNeedsAction: ical.ParticipationStatusNeedsAction,
	model.AttendeeStatusAccepted:    ical.ParticipationStatusAccepted,
	model.AttendeeStatusDeclined:    ical.ParticipationStatusDeclined,
	model.AttendeeStatusTentative:   ical.ParticipationStatusTentative,
}

func addAttendees(ve *ical.VEvent, attendees []*model.Attendee) {
	for _, a := range attendees {
		if a.Email == "" {
			continue
		}

		params := []ical.PropertyParameter{ical.WithRSVP(a.RSVP)}
		if a.Name != "" {
			params = append(params, ical.WithCN(a.Name))
		}
		if ps, ok := participationStatuses[a.Status]; ok {
			params = append(params, ps)
		}

		if a.Role == model.AttendeeRoleOrganizer {
			ve.SetOrganizer("mailto:"+a.Email, params[1:]...)
			continue
		}
		ve.AddAttendee("mailto:"+a.Email, params...)
	}
}
