package calendars

import (
	"github.com/SergeyKozhin/recurring-calendar/internal/database"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"owner_id",
		"name",
	).
	From(database.CalendarsTable)

type calendarDTO struct {
	ID      string
	OwnerID string
	Name    string
}
