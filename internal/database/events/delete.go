package events

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

func (*Repository) SoftDeleteMaster(ctx context.Context, q database.Queryable, id string, at time.Time) error {
	qb := database.PSQL.
		Update(database.EventsTable).
		Set("deleted_at", at).
		Set("sequence", sq.Expr("sequence + 1")).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"recurrence_id": nil}).
		Where(sq.Eq{"deleted_at": nil})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (*Repository) DeleteException(ctx context.Context, q database.Queryable, id string) error {
	qb := database.PSQL.
		Delete(database.EventsTable).
		Where(sq.Eq{"id": id}).
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

// DeleteExceptionsFrom removes the exceptions of uid overriding instants at
// or after from.
func (*Repository) DeleteExceptionsFrom(ctx context.Context, q database.Queryable, uid string, from time.Time) (int64, error) {
	qb := database.PSQL.
		Delete(database.EventsTable).
		Where(sq.Eq{"uid": uid}).
		Where(sq.GtOrEq{"recurrence_id": from})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteStaleExceptions removes exceptions whose master was soft-deleted
// before the given instant.
func (*Repository) DeleteStaleExceptions(ctx context.Context, q database.Queryable, before time.Time) (int64, error) {
	deleted := sq.
		Select("m.uid").
		From(database.EventsTable + " m").
		Where(sq.Eq{"m.recurrence_id": nil}).
		Where(sq.Lt{"m.deleted_at": before})

	query, args, err := deleted.ToSql()
	if err != nil {
		return 0, fmt.Errorf("ToSql: %w", err)
	}

	qb := database.PSQL.
		Delete(database.EventsTable).
		Where(sq.NotEq{"recurrence_id": nil}).
		Where("uid in ("+query+")", args...)

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	return tag.RowsAffected(), nil
}
