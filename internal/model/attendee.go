package model

type AttendeeRole string

const (
	AttendeeRoleOrganizer AttendeeRole = "organizer"
	AttendeeRoleAttendee  AttendeeRole = "attendee"
)

type AttendeeStatus string

const (
	AttendeeStatusNeedsAction AttendeeStatus = "needs_action"
	AttendeeStatusAccepted    AttendeeStatus = "accepted"
	AttendeeStatusDeclined    AttendeeStatus = "declined"
	AttendeeStatusTentative   AttendeeStatus = "tentative"
)

func (s AttendeeStatus) Valid() bool {
	switch s {
	case AttendeeStatusNeedsAction, AttendeeStatusAccepted, AttendeeStatusDeclined, AttendeeStatusTentative:
		return true
	}
	return false
}

type AttendeeCreate struct {
	UserID string
	Email  string
	Name   string
	Role   AttendeeRole
	RSVP   bool
}

// Attendee belongs to a series, so every occurrence shares the list.
type Attendee struct {
	ID     string
	UID    string
	Status AttendeeStatus
	AttendeeCreate
}
