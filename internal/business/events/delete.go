package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/identity"
)

// Delete removes the row or occurrence named by id. A concrete master id
// soft-deletes the whole series; a concrete exception id removes that
// override the same way a this-only delete of its occurrence would.
func (s *Service) Delete(ctx context.Context, id string, req model.DeleteRequest) error {
	masterID, instant := identity.Decode(id)

	err := s.inTx(ctx, "delete "+req.Scope.String(), func(tx database.Tx) error {
		if instant == nil {
			return s.deleteConcrete(ctx, tx, id, req)
		}

		master, state, err := s.loadOccurrence(ctx, tx, masterID, *instant)
		if err != nil {
			return err
		}

		switch req.Scope {
		case model.ScopeThisOnly:
			return s.deleteThisOnly(ctx, tx, master, state, req.Cancel)
		case model.ScopeThisAndFuture:
			return s.deleteThisAndFuture(ctx, tx, master, *instant)
		default:
			return fmt.Errorf("unknown scope %d", req.Scope)
		}
	})
	if err != nil {
		return err
	}

	s.logger.Debugw("event deleted", "identity", id, "scope", req.Scope.String(), "cancel", req.Cancel)

	return nil
}

func (s *Service) deleteConcrete(ctx context.Context, tx database.Tx, id string, req model.DeleteRequest) error {
	master, err := s.findMaster(ctx, tx, id, true)
	if err != nil {
		return err
	}
	if master != nil {
		if err := s.eventsRepository.SoftDeleteMaster(ctx, tx, master.ID, s.now().UTC()); err != nil {
			return fmt.Errorf("eventsRepository.SoftDeleteMaster: %w", err)
		}
		return nil
	}

	exception, err := s.eventsRepository.GetException(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("eventsRepository.GetException: %w", err)
	}

	parent, err := s.eventsRepository.GetMasterByUID(ctx, tx, exception.UID, true)
	switch {
	case errors.Is(err, model.ErrNotFound):
		parent = nil
	case err != nil:
		return fmt.Errorf("eventsRepository.GetMasterByUID: %w", err)
	case parent.DeletedAt != nil:
		parent = nil
	}

	if parent == nil {
		if err := s.eventsRepository.DeleteException(ctx, tx, exception.ID); err != nil {
			return fmt.Errorf("eventsRepository.DeleteException: %w", err)
		}
		return nil
	}

	return s.deleteOverride(ctx, tx, parent, exception, req.Cancel)
}

func (s *Service) deleteThisOnly(ctx context.Context, tx database.Tx, master *model.MasterEvent, state model.OccurrenceState, cancel bool) error {
	switch st := state.(type) {
	case model.Overridden:
		return s.deleteOverride(ctx, tx, master, st.Exception, cancel)
	case model.Cancelled:
		return nil
	case model.Materialized:
		master.Exclude(st.At)
		master.Sequence++
		if err := s.eventsRepository.UpdateMaster(ctx, tx, master); err != nil {
			return fmt.Errorf("eventsRepository.UpdateMaster: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unexpected occurrence state %T", state)
	}
}

// deleteOverride removes an exception row and reconciles the master's
// exclusions: the base occurrence comes back unless cancel is set.
func (s *Service) deleteOverride(ctx context.Context, tx database.Tx, master *model.MasterEvent, exception *model.ExceptionEvent, cancel bool) error {
	if err := s.eventsRepository.DeleteException(ctx, tx, exception.ID); err != nil {
		return fmt.Errorf("eventsRepository.DeleteException: %w", err)
	}

	instant := exception.RecurrenceID
	excluded := master.Excluded(instant)

	switch {
	case cancel && !excluded:
		master.Exclude(instant)
	case !cancel && excluded:
		master.Include(instant)
	default:
		return nil
	}

	master.Sequence++
	if err := s.eventsRepository.UpdateMaster(ctx, tx, master); err != nil {
		return fmt.Errorf("eventsRepository.UpdateMaster: %w", err)
	}

	return nil
}

// deleteThisAndFuture ends the series right before instant and drops every
// override from instant on. Cutting at the first occurrence deletes the
// master.
func (s *Service) deleteThisAndFuture(ctx context.Context, tx database.Tx, master *model.MasterEvent, instant time.Time) error {
	if _, err := s.eventsRepository.DeleteExceptionsFrom(ctx, tx, master.UID, instant); err != nil {
		return fmt.Errorf("eventsRepository.DeleteExceptionsFrom: %w", err)
	}

	if !instant.After(master.From) {
		if err := s.eventsRepository.SoftDeleteMaster(ctx, tx, master.ID, s.now().UTC()); err != nil {
			return fmt.Errorf("eventsRepository.SoftDeleteMaster: %w", err)
		}
		return nil
	}

	truncated, err := s.engine.Truncate(master.RRule, instant)
	if err != nil {
		return fmt.Errorf("engine.Truncate: %w", err)
	}

	master.RRule = truncated
	for e := range master.ExDates {
		if e >= instant.Unix() {
			delete(master.ExDates, e)
		}
	}
	master.Sequence++

	if err := s.eventsRepository.UpdateMaster(ctx, tx, master); err != nil {
		return fmt.Errorf("eventsRepository.UpdateMaster: %w", err)
	}

	return nil
}
