package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

const dateTimeFormat = time.RFC3339

// dateTime is a time.Time that travels as RFC 3339 text.
type dateTime time.Time

func (d dateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).UTC().Format(dateTimeFormat))
}

func (d *dateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date time must be a string: %w", err)
	}

	t, err := time.Parse(dateTimeFormat, s)
	if err != nil {
		return fmt.Errorf("invalid date time: %w", err)
	}

	*d = dateTime(t.Truncate(time.Second))
	return nil
}

func (d *dateTime) timePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}

type eventResp struct {
	ID           string            `json:"id"`
	UID          string            `json:"uid"`
	MasterID     string            `json:"master_id,omitempty"`
	Kind         string            `json:"kind"`
	Recurring    bool              `json:"recurring"`
	From         dateTime          `json:"from"`
	To           dateTime          `json:"to"`
	RRule        string            `json:"rrule,omitempty"`
	RecurrenceID *dateTime         `json:"recurrence_id,omitempty"`
	Sequence     int               `json:"sequence"`
	Summary      string            `json:"summary"`
	Description  string            `json:"description,omitempty"`
	Location     string            `json:"location,omitempty"`
	Status       model.EventStatus `json:"status"`
}

func mapToEventResp(o *model.Occurrence) (*eventResp, error) {
	resp := &eventResp{
		ID:          o.ID,
		UID:         o.UID,
		MasterID:    o.MasterID,
		Kind:        o.Kind.String(),
		Recurring:   o.Recurring(),
		From:        dateTime(o.From),
		To:          dateTime(o.To),
		RRule:       o.RRule,
		Sequence:    o.Sequence,
		Summary:     o.Summary,
		Description: o.Description,
		Location:    o.Location,
		Status:      o.Status,
	}
	if o.RecurrenceID != nil {
		recurrenceID := dateTime(*o.RecurrenceID)
		resp.RecurrenceID = &recurrenceID
	}

	return resp, nil
}

type attendeeResp struct {
	ID     string               `json:"id"`
	UserID string               `json:"user_id,omitempty"`
	Email  string               `json:"email"`
	Name   string               `json:"name,omitempty"`
	Role   model.AttendeeRole   `json:"role"`
	RSVP   bool                 `json:"rsvp"`
	Status model.AttendeeStatus `json:"status"`
}

func mapToAttendeeResp(a *model.Attendee) (*attendeeResp, error) {
	return &attendeeResp{
		ID:     a.ID,
		UserID: a.UserID,
		Email:  a.Email,
		Name:   a.Name,
		Role:   a.Role,
		RSVP:   a.RSVP,
		Status: a.Status,
	}, nil
}
