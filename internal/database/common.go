package database

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
)

var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	CalendarsTable = "calendars"
	EventsTable    = "calendar_events"
	AttendeesTable = "event_attendees"
)

const uniqueViolation = "23505"

// MapError translates driver errors into model errors.
func MapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.ErrAlreadyExists
	}

	return err
}
