package attendees

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

func (*Repository) CreateAttendee(ctx context.Context, q database.Queryable, a *model.Attendee) error {
	qb := database.PSQL.
		Insert(database.AttendeesTable).
		Columns(columns...).
		Values(
			a.ID,
			a.UID,
			a.UserID,
			a.Email,
			a.Name,
			a.Role,
			a.RSVP,
			a.Status,
		)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", database.MapError(err))
	}

	return nil
}

// CopyAttendees duplicates the attendee list of fromUID onto toUID with
// fresh row ids, leaving the source rows untouched.
func (*Repository) CopyAttendees(ctx context.Context, q database.Queryable, fromUID, toUID string) (int64, error) {
	source := sq.
		Select("gen_random_uuid()::text").
		Column(sq.Expr("?::text", toUID)).
		Columns(
			"user_id",
			"email",
			"name",
			"role",
			"rsvp",
			"status",
		).
		From(database.AttendeesTable).
		Where(sq.Eq{"uid": fromUID})

	qb := database.PSQL.
		Insert(database.AttendeesTable).
		Columns(columns...).
		Select(source)

	tag, err := q.Exec(ctx, qb)
	if err != nil {
		return 0, fmt.Errorf("SQL request: %w", database.MapError(err))
	}

	return tag.RowsAffected(), nil
}
