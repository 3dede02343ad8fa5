package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

// seriesExists fails with model.ErrNotFound unless uid names a live series.
func (s *Service) seriesExists(ctx context.Context, q database.Queryable, uid string) error {
	master, err := s.eventsRepository.GetMasterByUID(ctx, q, uid, false)
	if err != nil {
		return fmt.Errorf("eventsRepository.GetMasterByUID: %w", err)
	}
	if master.DeletedAt != nil {
		return model.ErrNotFound
	}
	return nil
}

func (s *Service) GetAttendees(ctx context.Context, uid string) ([]*model.Attendee, error) {
	if err := s.seriesExists(ctx, s.db, uid); err != nil {
		return nil, err
	}

	attendees, err := s.attendeesRepository.GetAttendees(ctx, s.db, uid)
	if err != nil {
		return nil, fmt.Errorf("attendeesRepository.GetAttendees: %w", err)
	}

	return attendees, nil
}

func (s *Service) AddAttendee(ctx context.Context, uid string, info *model.AttendeeCreate) (*model.Attendee, error) {
	var attendee *model.Attendee

	err := s.inTx(ctx, "add attendee", func(tx database.Tx) error {
		if err := s.seriesExists(ctx, tx, uid); err != nil {
			return err
		}

		var err error
		attendee, err = s.addAttendee(ctx, tx, uid, info)
		return err
	})
	if err != nil {
		return nil, err
	}

	return attendee, nil
}

func (s *Service) UpdateAttendeeStatus(ctx context.Context, uid, id string, status model.AttendeeStatus) (*model.Attendee, error) {
	var attendee *model.Attendee

	err := s.inTx(ctx, "update attendee", func(tx database.Tx) error {
		if err := s.attendeesRepository.UpdateAttendeeStatus(ctx, tx, uid, id, status); err != nil {
			return fmt.Errorf("attendeesRepository.UpdateAttendeeStatus: %w", err)
		}

		var err error
		attendee, err = s.attendeesRepository.GetAttendee(ctx, tx, uid, id)
		if err != nil {
			return fmt.Errorf("attendeesRepository.GetAttendee: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return attendee, nil
}

func (s *Service) RemoveAttendee(ctx context.Context, uid, id string) error {
	if err := s.attendeesRepository.DeleteAttendee(ctx, s.db, uid, id); err != nil {
		return fmt.Errorf("attendeesRepository.DeleteAttendee: %w", err)
	}
	return nil
}
