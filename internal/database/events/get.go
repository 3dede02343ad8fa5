package events

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

// GetMaster returns a live master. forUpdate locks the row until the
// surrounding transaction ends.
func (*Repository) GetMaster(ctx context.Context, q database.Queryable, id string, forUpdate bool) (*model.MasterEvent, error) {
	qb := lock(mastersQuery.
		Where(sq.Eq{"e.id": id}).
		Where(sq.Eq{"e.deleted_at": nil}), forUpdate)

	dto := &eventDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", database.MapError(err))
	}

	return mapToMaster(dto), nil
}

// GetMasterByUID returns the master of a series, deleted or not.
func (*Repository) GetMasterByUID(ctx context.Context, q database.Queryable, uid string, forUpdate bool) (*model.MasterEvent, error) {
	qb := lock(mastersQuery.
		Where(sq.Eq{"e.uid": uid}), forUpdate)

	dto := &eventDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", database.MapError(err))
	}

	return mapToMaster(dto), nil
}

func (*Repository) GetException(ctx context.Context, q database.Queryable, id string) (*model.ExceptionEvent, error) {
	qb := exceptionsQuery.
		Where(sq.Eq{"e.id": id})

	dto := &eventDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", database.MapError(err))
	}

	return mapToException(dto), nil
}

func (*Repository) GetExceptionByInstant(ctx context.Context, q database.Queryable, uid string, instant time.Time) (*model.ExceptionEvent, error) {
	qb := exceptionsQuery.
		Where(sq.Eq{"e.uid": uid}).
		Where(sq.Eq{"e.recurrence_id": instant})

	dto := &eventDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", database.MapError(err))
	}

	return mapToException(dto), nil
}

// GetMasters returns the live masters that may have occurrences in the
// filter window. Recurring masters are only bounded by their start, the
// rule decides the rest.
func (*Repository) GetMasters(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.MasterEvent, error) {
	qb := mastersInWindow(filter)

	var dtos []*eventDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.MasterEvent, len(dtos))
	for i, d := range dtos {
		res[i] = mapToMaster(d)
	}

	return res, nil
}

// GetExceptionsInWindow returns the exceptions of live series in scope whose
// own bounds overlap the filter window, wherever their master starts.
func (*Repository) GetExceptionsInWindow(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.ExceptionEvent, error) {
	qb := exceptionsInWindow(filter)

	var dtos []*eventDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.ExceptionEvent, len(dtos))
	for i, d := range dtos {
		res[i] = mapToException(d)
	}

	return res, nil
}

func mastersInWindow(filter model.EventsFilter) sq.SelectBuilder {
	qb := mastersQuery.
		Where(sq.Eq{"e.deleted_at": nil}).
		OrderBy("e.start_at", "e.id")

	if !filter.To.IsZero() {
		qb = qb.
			Where(sq.Lt{"e.start_at": filter.To}).
			Where(sq.Or{
				sq.NotEq{"e.rrule": ""},
				sq.Gt{"e.end_at": filter.From},
				sq.GtOrEq{"e.start_at": filter.From},
			})
	}

	if filter.CalendarID != "" {
		qb = qb.Where(sq.Eq{"e.calendar_id": filter.CalendarID})
	}

	if filter.AttendeeUserID != "" {
		qb = qb.Where(invitedExpr(filter.AttendeeUserID))
	}

	return qb
}

func exceptionsInWindow(filter model.EventsFilter) sq.SelectBuilder {
	qb := exceptionsQuery.
		Join(database.EventsTable+" m on m.uid = e.uid and m.recurrence_id is null").
		Where(sq.Eq{"m.deleted_at": nil}).
		Where(sq.Lt{"e.start_at": filter.To}).
		Where(sq.Or{
			sq.Gt{"e.end_at": filter.From},
			sq.GtOrEq{"e.start_at": filter.From},
		}).
		OrderBy("e.start_at", "e.id")

	if filter.CalendarID != "" {
		qb = qb.Where(sq.Eq{"m.calendar_id": filter.CalendarID})
	}

	if filter.AttendeeUserID != "" {
		qb = qb.Where(invitedExpr(filter.AttendeeUserID))
	}

	return qb
}

// invitedExpr matches series the user attends and has not declined. A user
// listed more than once still matches each row once.
func invitedExpr(userID string) sq.Sqlizer {
	return sq.Expr(
		"exists (select 1 from "+database.AttendeesTable+" a where a.uid = e.uid and a.user_id = ? and a.status <> ?)",
		userID, string(model.AttendeeStatusDeclined),
	)
}

// GetExceptions returns every exception of the given series ordered by the
// instant they override.
func (*Repository) GetExceptions(ctx context.Context, q database.Queryable, uids []string) ([]*model.ExceptionEvent, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	qb := exceptionsQuery.
		Where(sq.Eq{"e.uid": uids}).
		OrderBy("e.recurrence_id")

	var dtos []*eventDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.ExceptionEvent, len(dtos))
	for i, d := range dtos {
		res[i] = mapToException(d)
	}

	return res, nil
}
