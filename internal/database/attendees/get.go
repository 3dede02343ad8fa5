package attendees

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

func (*Repository) GetAttendees(ctx context.Context, q database.Queryable, uid string) ([]*model.Attendee, error) {
	return getAttendees(ctx, q, sq.Eq{"uid": uid})
}

func (*Repository) GetAttendeesBySeries(ctx context.Context, q database.Queryable, uids []string) ([]*model.Attendee, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	return getAttendees(ctx, q, sq.Eq{"uid": uids})
}

func (*Repository) GetAttendee(ctx context.Context, q database.Queryable, uid, id string) (*model.Attendee, error) {
	attendees, err := getAttendees(ctx, q, sq.Eq{"uid": uid, "id": id})
	if err != nil {
		return nil, err
	}

	if len(attendees) == 0 {
		return nil, model.ErrNotFound
	}

	return attendees[0], nil
}

func getAttendees(ctx context.Context, q database.Queryable, predicate interface{}) ([]*model.Attendee, error) {
	qb := baseQuery.
		Where(predicate).
		OrderBy("role desc", "email", "id")

	var dtos []*attendeeDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Attendee, len(dtos))
	for i, d := range dtos {
		res[i] = mapToAttendee(d)
	}

	return res, nil
}
