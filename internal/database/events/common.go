package events

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
)

// Repository stores masters and exceptions in one table. A row with a
// recurrence_id is an exception of the master sharing its uid.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"e.id",
		"e.uid",
		"e.calendar_id",
		"e.recurrence_id",
		"e.start_at",
		"e.end_at",
		"e.rrule",
		"e.exdate",
		"e.sequence",
		"e.summary",
		"e.description",
		"e.location",
		"e.status",
		"e.deleted_at",
	).
	From(database.EventsTable + " e")

var (
	mastersQuery    = baseQuery.Where(sq.Eq{"e.recurrence_id": nil})
	exceptionsQuery = baseQuery.Where(sq.NotEq{"e.recurrence_id": nil})
)

func lock(qb sq.SelectBuilder, forUpdate bool) sq.SelectBuilder {
	if forUpdate {
		return qb.Suffix("FOR UPDATE")
	}
	return qb
}
