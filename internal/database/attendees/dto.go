package attendees

import (
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

type attendeeDTO struct {
	ID     string
	UID    string `db:"uid"`
	UserID string
	Email  string
	Name   string
	Role   string
	RSVP   bool `db:"rsvp"`
	Status string
}

func mapToAttendee(dto *attendeeDTO) *model.Attendee {
	return &model.Attendee{
		ID:     dto.ID,
		UID:    dto.UID,
		Status: model.AttendeeStatus(dto.Status),
		AttendeeCreate: model.AttendeeCreate{
			UserID: dto.UserID,
			Email:  dto.Email,
			Name:   dto.Name,
			Role:   model.AttendeeRole(dto.Role),
			RSVP:   dto.RSVP,
		},
	}
}
