package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/identity"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/rrule"
)

const defaultCalendarName = "Calendar"

// CreateSeries stores a new master in the owner's calendar and returns its
// id. The rule is stored in canonical form.
func (s *Service) CreateSeries(ctx context.Context, ownerID string, info *model.SeriesCreate) (string, error) {
	rule, err := rrule.Parse(info.RRule)
	if err != nil {
		return "", err
	}

	ruleText := ""
	if rule != nil {
		ruleText = rule.String()
	}

	content := info.EventContent
	if content.Status == "" {
		content.Status = model.EventStatusConfirmed
	}

	id, err := identity.NewID()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	uid, err := identity.NewID()
	if err != nil {
		return "", fmt.Errorf("generate uid: %w", err)
	}

	master := &model.MasterEvent{
		ID:           id,
		UID:          uid,
		From:         info.From.UTC().Truncate(time.Second),
		To:           info.To.UTC().Truncate(time.Second),
		RRule:        ruleText,
		ExDates:      map[int64]struct{}{},
		EventContent: content,
	}
	if err := checkTimes(master.From, master.To); err != nil {
		return "", err
	}

	err = s.inTx(ctx, "create series", func(tx database.Tx) error {
		calendar, err := s.ownerCalendar(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		master.CalendarID = calendar.ID

		if err := s.eventsRepository.CreateMaster(ctx, tx, master); err != nil {
			return fmt.Errorf("eventsRepository.CreateMaster: %w", err)
		}

		for _, a := range info.Attendees {
			if _, err := s.addAttendee(ctx, tx, master.UID, a); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Debugw("series created", "id", master.ID, "uid", master.UID, "rrule", master.RRule)

	return master.ID, nil
}

// ownerCalendar returns the owner's calendar, creating it on first use.
func (s *Service) ownerCalendar(ctx context.Context, q database.Queryable, ownerID string) (*model.Calendar, error) {
	calendar, err := s.calendarsRepository.GetCalendarByOwner(ctx, q, ownerID)
	if err == nil {
		return calendar, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("calendarsRepository.GetCalendarByOwner: %w", err)
	}

	id, err := identity.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate calendar id: %w", err)
	}

	calendar = &model.Calendar{
		ID:      id,
		OwnerID: ownerID,
		Name:    defaultCalendarName,
	}
	if err := s.calendarsRepository.CreateCalendar(ctx, q, calendar); err != nil {
		return nil, fmt.Errorf("calendarsRepository.CreateCalendar: %w", err)
	}

	return calendar, nil
}

func (s *Service) addAttendee(ctx context.Context, q database.Queryable, uid string, info *model.AttendeeCreate) (*model.Attendee, error) {
	attendee := &model.Attendee{
		ID:             uuid.New().String(),
		UID:            uid,
		Status:         model.AttendeeStatusNeedsAction,
		AttendeeCreate: *info,
	}

	switch attendee.Role {
	case model.AttendeeRoleOrganizer:
		attendee.Status = model.AttendeeStatusAccepted
	case "":
		attendee.Role = model.AttendeeRoleAttendee
	}

	if err := s.attendeesRepository.CreateAttendee(ctx, q, attendee); err != nil {
		return nil, fmt.Errorf("attendeesRepository.CreateAttendee: %w", err)
	}

	return attendee, nil
}
