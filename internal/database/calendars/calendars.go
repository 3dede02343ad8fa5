package calendars

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

func (*Repository) GetCalendarByOwner(ctx context.Context, q database.Queryable, ownerID string) (*model.Calendar, error) {
	qb := baseQuery.
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at").
		Limit(1)

	dto := &calendarDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", database.MapError(err))
	}

	return &model.Calendar{
		ID:      dto.ID,
		OwnerID: dto.OwnerID,
		Name:    dto.Name,
	}, nil
}

func (*Repository) CreateCalendar(ctx context.Context, q database.Queryable, c *model.Calendar) error {
	qb := database.PSQL.
		Insert(database.CalendarsTable).
		Columns("id", "owner_id", "name").
		Values(c.ID, c.OwnerID, c.Name)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", database.MapError(err))
	}

	return nil
}
