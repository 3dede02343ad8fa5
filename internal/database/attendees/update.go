package attendees

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

func (*Repository) UpdateAttendeeStatus(ctx context.Context, q database.Queryable, uid, id string, status model.AttendeeStatus) error {
	qb := database.PSQL.
		Update(database.AttendeesTable).
		Set("status", status).
		Where(sq.Eq{"uid": uid, "id": id})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (*Repository) DeleteAttendee(ctx context.Context, q database.Queryable, uid, id string) error {
	qb := database.PSQL.
		Delete(database.AttendeesTable).
		Where(sq.Eq{"uid": uid, "id": id})

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
