package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

var insertColumns = []string{
	"id",
	"uid",
	"calendar_id",
	"recurrence_id",
	"start_at",
	"end_at",
	"rrule",
	"exdate",
	"sequence",
	"summary",
	"description",
	"location",
	"status",
}

func (*Repository) CreateMaster(ctx context.Context, q database.Queryable, m *model.MasterEvent) error {
	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(insertColumns...).
		Values(
			m.ID,
			m.UID,
			m.CalendarID,
			nil,
			m.From,
			m.To,
			m.RRule,
			exDateList(m.ExDates),
			m.Sequence,
			m.Summary,
			m.Description,
			m.Location,
			m.Status,
		)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", database.MapError(err))
	}

	return nil
}

// CreateException fails with model.ErrAlreadyExists when the instant is
// already overridden.
func (*Repository) CreateException(ctx context.Context, q database.Queryable, e *model.ExceptionEvent) error {
	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(insertColumns...).
		Values(
			e.ID,
			e.UID,
			e.CalendarID,
			e.RecurrenceID,
			e.From,
			e.To,
			"",
			exDateList(nil),
			e.Sequence,
			e.Summary,
			e.Description,
			e.Location,
			e.Status,
		)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", database.MapError(err))
	}

	return nil
}
