package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

// inTx runs fn in a transaction. Store failures come back as
// model.TransactionError; domain errors are returned as they are.
func (s *Service) inTx(ctx context.Context, op string, fn func(tx database.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &model.TransactionError{Op: op, Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		if isDomainError(err) {
			return err
		}
		return &model.TransactionError{Op: op, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &model.TransactionError{Op: op, Err: fmt.Errorf("commit tx: %w", err)}
	}

	return nil
}

func isDomainError(err error) bool {
	return errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrInvalidRRule) ||
		errors.Is(err, model.ErrNotRecurring) ||
		errors.Is(err, model.ErrInvalidRecurrenceID) ||
		errors.Is(err, model.ErrInvalidTimeRange) ||
		errors.Is(err, model.ErrTransactionFailed)
}

func checkTimes(from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("%v is before %v: %w", to, from, model.ErrInvalidTimeRange)
	}
	return nil
}

// findException returns the override of instant, or nil when there is none.
func (s *Service) findException(ctx context.Context, q database.Queryable, uid string, instant time.Time) (*model.ExceptionEvent, error) {
	e, err := s.eventsRepository.GetExceptionByInstant(ctx, q, uid, instant)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetExceptionByInstant: %w", err)
	}
	return e, nil
}

// classify checks that instant is an occurrence of the recurring master and
// returns its current state.
func (s *Service) classify(ctx context.Context, q database.Queryable, master *model.MasterEvent, instant time.Time) (model.OccurrenceState, error) {
	if !master.Recurring() {
		return nil, model.ErrNotRecurring
	}

	ok, err := s.engine.IsOccurrence(master.RRule, master.From, instant)
	if err != nil {
		return nil, fmt.Errorf("engine.IsOccurrence: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%v is not an occurrence of %s: %w", instant, master.ID, model.ErrInvalidRecurrenceID)
	}

	exception, err := s.findException(ctx, q, master.UID, instant)
	if err != nil {
		return nil, err
	}

	return model.Classify(master, exception, instant), nil
}

// loadOccurrence locks the master of a virtual identity and classifies the
// addressed instant.
func (s *Service) loadOccurrence(ctx context.Context, q database.Queryable, masterID string, instant time.Time) (*model.MasterEvent, model.OccurrenceState, error) {
	master, err := s.eventsRepository.GetMaster(ctx, q, masterID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("eventsRepository.GetMaster: %w", err)
	}

	state, err := s.classify(ctx, q, master, instant)
	if err != nil {
		return nil, nil, err
	}

	return master, state, nil
}

// findMaster returns the live master with the given id, or nil when id
// names some other row.
func (s *Service) findMaster(ctx context.Context, q database.Queryable, id string, forUpdate bool) (*model.MasterEvent, error) {
	m, err := s.eventsRepository.GetMaster(ctx, q, id, forUpdate)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetMaster: %w", err)
	}
	return m, nil
}

// shiftExDates moves every exclusion at or after from by shift.
func shiftExDates(exDates map[int64]struct{}, from time.Time, shift time.Duration) map[int64]struct{} {
	res := make(map[int64]struct{}, len(exDates))
	for e := range exDates {
		if e >= from.Unix() {
			e = time.Unix(e, 0).Add(shift).Unix()
		}
		res[e] = struct{}{}
	}
	return res
}
