package model

type Calendar struct {
	ID      string
	OwnerID string
	Name    string
}

type Role int

const (
	RoleOwner Role = iota
	RoleInvitee
)

// CalendarScope selects which series a read covers.
type CalendarScope struct {
	UserID string
	Role   Role
}

// Series is a master with every row that shares its uid.
type Series struct {
	Master     *MasterEvent
	Exceptions []*ExceptionEvent
	Attendees  []*Attendee
}
