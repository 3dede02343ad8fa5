package events

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/identity"
)

// ReadAll returns every occurrence visible to the scope that overlaps the
// window, sorted by start.
func (s *Service) ReadAll(ctx context.Context, scope model.CalendarScope, w model.Window) ([]*model.Occurrence, error) {
	if !w.From.Before(w.To) {
		return nil, nil
	}

	filter := model.EventsFilter{
		From: w.From,
		To:   w.To,
	}

	switch scope.Role {
	case model.RoleOwner:
		calendar, err := s.calendarsRepository.GetCalendarByOwner(ctx, s.db, scope.UserID)
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("calendarsRepository.GetCalendarByOwner: %w", err)
		}
		filter.CalendarID = calendar.ID
	case model.RoleInvitee:
		filter.AttendeeUserID = scope.UserID
	default:
		return nil, fmt.Errorf("unknown role %d", scope.Role)
	}

	masters, err := s.eventsRepository.GetMasters(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetMasters: %w", err)
	}

	uids := make([]string, len(masters))
	for i, m := range masters {
		uids[i] = m.UID
	}

	exceptions, err := s.eventsRepository.GetExceptions(ctx, s.db, uids)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetExceptions: %w", err)
	}

	// Overrides moved away from their master's span are matched on their own.
	inWindow, err := s.eventsRepository.GetExceptionsInWindow(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetExceptionsInWindow: %w", err)
	}

	overridden := make(map[string]map[int64]struct{}, len(masters))
	for _, e := range exceptions {
		if overridden[e.UID] == nil {
			overridden[e.UID] = make(map[int64]struct{})
		}
		overridden[e.UID][e.RecurrenceID.Unix()] = struct{}{}
	}

	var res []*model.Occurrence

	for _, m := range masters {
		occurrences, err := s.expand(m, overridden[m.UID], w)
		if err != nil {
			return nil, err
		}
		res = append(res, occurrences...)
	}

	emitted := make(map[string]struct{})
	for _, list := range [][]*model.ExceptionEvent{exceptions, inWindow} {
		for _, e := range list {
			if _, ok := emitted[e.ID]; ok || !w.Overlaps(e.From, e.To) {
				continue
			}
			emitted[e.ID] = struct{}{}
			res = append(res, model.OccurrenceFromException(e))
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		if res[i].From.Equal(res[j].From) {
			return res[i].ID < res[j].ID
		}
		return res[i].From.Before(res[j].From)
	})

	return res, nil
}

// expand returns the occurrences of one master in the window, leaving out
// cancelled and overridden instants.
func (s *Service) expand(m *model.MasterEvent, overridden map[int64]struct{}, w model.Window) ([]*model.Occurrence, error) {
	if !m.Recurring() {
		if w.Overlaps(m.From, m.To) {
			return []*model.Occurrence{model.OccurrenceFromMaster(m)}, nil
		}
		return nil, nil
	}

	// Occurrences starting before the window may still overlap it.
	instants, err := s.engine.Expand(m.RRule, m.From, model.Window{
		From: w.From.Add(-m.Duration()),
		To:   w.To,
	})
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", m.ID, err)
	}

	var res []*model.Occurrence
	for _, t := range instants {
		if m.Excluded(t) {
			continue
		}
		if _, ok := overridden[t.Unix()]; ok {
			continue
		}

		o := model.OccurrenceFromInstant(m, identity.Encode(m.ID, t), t)
		if !w.Overlaps(o.From, o.To) {
			continue
		}
		res = append(res, o)
	}

	return res, nil
}

// ReadOne resolves an identity. Concrete ids are looked up directly;
// virtual ones are projected from their master unless overridden.
func (s *Service) ReadOne(ctx context.Context, id string) (*model.Occurrence, error) {
	masterID, instant := identity.Decode(id)

	if instant == nil {
		return s.readConcrete(ctx, id)
	}

	master, err := s.eventsRepository.GetMaster(ctx, s.db, masterID, false)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetMaster: %w", err)
	}

	if !master.Recurring() {
		if !master.From.Equal(*instant) {
			return nil, model.ErrNotFound
		}
		return model.OccurrenceFromMaster(master), nil
	}

	state, err := s.classify(ctx, s.db, master, *instant)
	if err != nil {
		return nil, err
	}

	switch st := state.(type) {
	case model.Overridden:
		o := model.OccurrenceFromException(st.Exception)
		o.MasterID = master.ID
		return o, nil
	case model.Cancelled:
		return nil, fmt.Errorf("occurrence %s is cancelled: %w", id, model.ErrNotFound)
	case model.Materialized:
		return model.OccurrenceFromInstant(master, identity.Encode(master.ID, st.At), st.At), nil
	default:
		return nil, fmt.Errorf("unexpected occurrence state %T", state)
	}
}

func (s *Service) readConcrete(ctx context.Context, id string) (*model.Occurrence, error) {
	master, err := s.findMaster(ctx, s.db, id, false)
	if err != nil {
		return nil, err
	}
	if master != nil {
		return model.OccurrenceFromMaster(master), nil
	}

	exception, err := s.eventsRepository.GetException(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetException: %w", err)
	}

	o := model.OccurrenceFromException(exception)

	parent, err := s.eventsRepository.GetMasterByUID(ctx, s.db, exception.UID, false)
	switch {
	case err == nil:
		o.MasterID = parent.ID
	case !errors.Is(err, model.ErrNotFound):
		return nil, fmt.Errorf("eventsRepository.GetMasterByUID: %w", err)
	}

	return o, nil
}

// ListSeries returns every live series of the owner's calendar with its
// exceptions and attendees.
func (s *Service) ListSeries(ctx context.Context, ownerID string) ([]*model.Series, error) {
	calendar, err := s.calendarsRepository.GetCalendarByOwner(ctx, s.db, ownerID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("calendarsRepository.GetCalendarByOwner: %w", err)
	}

	masters, err := s.eventsRepository.GetMasters(ctx, s.db, model.EventsFilter{CalendarID: calendar.ID})
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetMasters: %w", err)
	}

	uids := make([]string, len(masters))
	series := make(map[string]*model.Series, len(masters))
	res := make([]*model.Series, len(masters))
	for i, m := range masters {
		uids[i] = m.UID
		res[i] = &model.Series{Master: m}
		series[m.UID] = res[i]
	}

	exceptions, err := s.eventsRepository.GetExceptions(ctx, s.db, uids)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetExceptions: %w", err)
	}
	for _, e := range exceptions {
		if sr, ok := series[e.UID]; ok {
			sr.Exceptions = append(sr.Exceptions, e)
		}
	}

	attendees, err := s.attendeesRepository.GetAttendeesBySeries(ctx, s.db, uids)
	if err != nil {
		return nil, fmt.Errorf("attendeesRepository.GetAttendeesBySeries: %w", err)
	}
	for _, a := range attendees {
		if sr, ok := series[a.UID]; ok {
			sr.Attendees = append(sr.Attendees, a)
		}
	}

	return res, nil
}
