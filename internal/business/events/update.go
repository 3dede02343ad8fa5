package events

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/identity"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/rrule"
)

// Update applies patch to the row or occurrence named by id. Concrete ids
// are edited in place; virtual ones follow scope.
func (s *Service) Update(ctx context.Context, id string, scope model.Scope, patch *model.EventPatch) error {
	if patch.RRule != nil {
		rule, err := rrule.Parse(*patch.RRule)
		if err != nil {
			return err
		}
		text := ""
		if rule != nil {
			text = rule.String()
		}
		patch.RRule = &text
	}

	masterID, instant := identity.Decode(id)

	err := s.inTx(ctx, "update "+scope.String(), func(tx database.Tx) error {
		if instant == nil {
			return s.updateConcrete(ctx, tx, id, patch)
		}

		master, state, err := s.loadOccurrence(ctx, tx, masterID, *instant)
		if err != nil {
			return err
		}

		switch scope {
		case model.ScopeThisOnly:
			return s.updateThisOnly(ctx, tx, master, state, patch)
		case model.ScopeThisAndFuture:
			if master.From.Equal(*instant) {
				return s.updateMaster(ctx, tx, master, patch)
			}
			_, err := s.split(ctx, tx, master, *instant, patch)
			return err
		default:
			return fmt.Errorf("unknown scope %d", scope)
		}
	})
	if err != nil {
		return err
	}

	s.logger.Debugw("event updated", "identity", id, "scope", scope.String())

	return nil
}

func (s *Service) updateConcrete(ctx context.Context, tx database.Tx, id string, patch *model.EventPatch) error {
	master, err := s.findMaster(ctx, tx, id, true)
	if err != nil {
		return err
	}
	if master != nil {
		return s.updateMaster(ctx, tx, master, patch)
	}

	exception, err := s.eventsRepository.GetException(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("eventsRepository.GetException: %w", err)
	}

	return s.updateException(ctx, tx, exception, patch)
}

// updateMaster edits the whole series. Moving the start shifts exclusions
// and overrides along so they keep addressing the same occurrences.
func (s *Service) updateMaster(ctx context.Context, tx database.Tx, master *model.MasterEvent, patch *model.EventPatch) error {
	oldFrom := master.From

	patch.ApplyContent(&master.EventContent)
	master.From, master.To = patch.ApplyTimes(master.From, master.To)
	if err := checkTimes(master.From, master.To); err != nil {
		return err
	}
	if patch.RRule != nil {
		master.RRule = *patch.RRule
	}
	master.Sequence++

	shift := master.From.Sub(oldFrom)
	if shift != 0 {
		master.ExDates = shiftExDates(master.ExDates, oldFrom, shift)
	}

	if err := s.eventsRepository.UpdateMaster(ctx, tx, master); err != nil {
		return fmt.Errorf("eventsRepository.UpdateMaster: %w", err)
	}

	if shift != 0 {
		if _, err := s.eventsRepository.ReparentExceptions(ctx, tx, master.UID, time.Time{}, master.UID, shift); err != nil {
			return fmt.Errorf("eventsRepository.ReparentExceptions: %w", err)
		}
	}

	return nil
}

func (s *Service) updateException(ctx context.Context, tx database.Tx, exception *model.ExceptionEvent, patch *model.EventPatch) error {
	patch.ApplyContent(&exception.EventContent)
	exception.From, exception.To = patch.ApplyTimes(exception.From, exception.To)
	if err := checkTimes(exception.From, exception.To); err != nil {
		return err
	}
	exception.Sequence++

	if err := s.eventsRepository.UpdateException(ctx, tx, exception); err != nil {
		return fmt.Errorf("eventsRepository.UpdateException: %w", err)
	}

	return nil
}

// updateThisOnly upserts the override of a single occurrence.
func (s *Service) updateThisOnly(ctx context.Context, tx database.Tx, master *model.MasterEvent, state model.OccurrenceState, patch *model.EventPatch) error {
	switch st := state.(type) {
	case model.Overridden:
		return s.updateException(ctx, tx, st.Exception, patch)
	case model.Cancelled:
		return fmt.Errorf("occurrence %v of %s is cancelled: %w", st.At, master.ID, model.ErrInvalidRecurrenceID)
	case model.Materialized:
		id, err := identity.NewID()
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}

		exception := &model.ExceptionEvent{
			ID:           id,
			UID:          master.UID,
			CalendarID:   master.CalendarID,
			RecurrenceID: st.At,
			From:         st.At,
			To:           st.At.Add(master.Duration()),
			Sequence:     master.Sequence,
			EventContent: master.EventContent,
		}
		patch.ApplyContent(&exception.EventContent)
		exception.From, exception.To = patch.ApplyTimes(exception.From, exception.To)
		if err := checkTimes(exception.From, exception.To); err != nil {
			return err
		}

		if err := s.eventsRepository.CreateException(ctx, tx, exception); err != nil {
			return fmt.Errorf("eventsRepository.CreateException: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unexpected occurrence state %T", state)
	}
}
