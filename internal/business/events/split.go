package events

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/identity"
)

// split forks the series at instant. The old master keeps the occurrences
// before instant; a new master under a new uid takes instant and everything
// after it, together with the exclusions and overrides of that tail. The
// caller holds the lock on the old master.
func (s *Service) split(ctx context.Context, tx database.Tx, master *model.MasterEvent, instant time.Time, patch *model.EventPatch) (*model.MasterEvent, error) {
	truncated, err := s.engine.Truncate(master.RRule, instant)
	if err != nil {
		return nil, fmt.Errorf("engine.Truncate: %w", err)
	}

	continuation, err := s.engine.Continue(master.RRule, master.From, instant)
	if err != nil {
		return nil, fmt.Errorf("engine.Continue: %w", err)
	}
	if patch.RRule != nil {
		continuation = *patch.RRule
	}

	id, err := identity.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}
	uid, err := identity.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate uid: %w", err)
	}

	fork := &model.MasterEvent{
		ID:           id,
		UID:          uid,
		CalendarID:   master.CalendarID,
		RRule:        continuation,
		ExDates:      map[int64]struct{}{},
		EventContent: master.EventContent,
	}
	patch.ApplyContent(&fork.EventContent)
	fork.From, fork.To = patch.ApplyTimes(instant, instant.Add(master.Duration()))
	if err := checkTimes(fork.From, fork.To); err != nil {
		return nil, err
	}

	shift := fork.From.Sub(instant)
	for e := range master.ExDates {
		if e >= instant.Unix() {
			delete(master.ExDates, e)
			fork.Exclude(time.Unix(e, 0).Add(shift))
		}
	}

	master.RRule = truncated
	master.Sequence++

	if err := s.eventsRepository.UpdateMaster(ctx, tx, master); err != nil {
		return nil, fmt.Errorf("eventsRepository.UpdateMaster: %w", err)
	}

	if err := s.eventsRepository.CreateMaster(ctx, tx, fork); err != nil {
		return nil, fmt.Errorf("eventsRepository.CreateMaster: %w", err)
	}

	moved, err := s.eventsRepository.ReparentExceptions(ctx, tx, master.UID, instant, fork.UID, shift)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.ReparentExceptions: %w", err)
	}

	copied, err := s.attendeesRepository.CopyAttendees(ctx, tx, master.UID, fork.UID)
	if err != nil {
		return nil, fmt.Errorf("attendeesRepository.CopyAttendees: %w", err)
	}

	s.logger.Debugw("series split",
		"master_id", master.ID,
		"fork_id", fork.ID,
		"instant", instant,
		"exceptions_moved", moved,
		"attendees_copied", copied,
	)

	return fork, nil
}
