package attendees

import (
	"github.com/SergeyKozhin/recurring-calendar/internal/database"
)

// Repository stores attendees by series uid, so every occurrence of a
// series shares one list.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var columns = []string{
	"id",
	"uid",
	"user_id",
	"email",
	"name",
	"role",
	"rsvp",
	"status",
}

var baseQuery = database.PSQL.
	Select(columns...).
	From(database.AttendeesTable)
