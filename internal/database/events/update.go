package events

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

func (*Repository) UpdateMaster(ctx context.Context, q database.Queryable, m *model.MasterEvent) error {
	qb := database.PSQL.
		Update(database.EventsTable).
		SetMap(map[string]interface{}{
			"start_at":    m.From,
			"end_at":      m.To,
			"rrule":       m.RRule,
			"exdate":      exDateList(m.ExDates),
			"sequence":    m.Sequence,
			"summary":     m.Summary,
			"description": m.Description,
			"location":    m.Location,
			"status":      m.Status,
			"updated_at":  sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": m.ID}).
		Where(sq.Eq{"recurrence_id": nil})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (*Repository) UpdateException(ctx context.Context, q database.Queryable, e *model.ExceptionEvent) error {
	qb := database.PSQL.
		Update(database.EventsTable).
		SetMap(map[string]interface{}{
			"start_at":    e.From,
			"end_at":      e.To,
			"sequence":    e.Sequence,
			"summary":     e.Summary,
			"description": e.Description,
			"location":    e.Location,
			"status":      e.Status,
			"updated_at":  sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": e.ID}).
		Where(sq.NotEq{"recurrence_id": nil})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// ReparentExceptions moves the exceptions of uid overriding instants at or
// after from to newUID in one statement. Their recurrence ids are shifted by
// shift so they stay aligned with the new master's rule.
func (*Repository) ReparentExceptions(ctx context.Context, q database.Queryable, uid string, from time.Time, newUID string, shift time.Duration) (int64, error) {
	qb := database.PSQL.
		Update(database.EventsTable).
		Set("uid", newUID).
		Set("recurrence_id", sq.Expr("recurrence_id + make_interval(secs => ?)", shift.Seconds())).
		Set("sequence", sq.Expr("sequence + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"uid": uid}).
		Where(sq.GtOrEq{"recurrence_id": from})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected(), nil
}
