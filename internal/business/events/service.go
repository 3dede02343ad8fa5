package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/model"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/rrule"
)

// Service edits series and projects them into occurrences. Every mutation
// runs in one transaction; reads are recomputed from the store each time.
type Service struct {
	db                  database.PGX
	eventsRepository    eventsRepository
	attendeesRepository attendeesRepository
	calendarsRepository calendarsRepository
	engine              *rrule.Engine
	logger              *zap.SugaredLogger
	now                 func() time.Time
}

type eventsRepository interface {
	CreateMaster(ctx context.Context, q database.Queryable, m *model.MasterEvent) error
	CreateException(ctx context.Context, q database.Queryable, e *model.ExceptionEvent) error
	GetMaster(ctx context.Context, q database.Queryable, id string, forUpdate bool) (*model.MasterEvent, error)
	GetMasterByUID(ctx context.Context, q database.Queryable, uid string, forUpdate bool) (*model.MasterEvent, error)
	GetException(ctx context.Context, q database.Queryable, id string) (*model.ExceptionEvent, error)
	GetExceptionByInstant(ctx context.Context, q database.Queryable, uid string, instant time.Time) (*model.ExceptionEvent, error)
	GetMasters(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.MasterEvent, error)
	GetExceptions(ctx context.Context, q database.Queryable, uids []string) ([]*model.ExceptionEvent, error)
	GetExceptionsInWindow(ctx context.Context, q database.Queryable, filter model.EventsFilter) ([]*model.ExceptionEvent, error)
	UpdateMaster(ctx context.Context, q database.Queryable, m *model.MasterEvent) error
	UpdateException(ctx context.Context, q database.Queryable, e *model.ExceptionEvent) error
	ReparentExceptions(ctx context.Context, q database.Queryable, uid string, from time.Time, newUID string, shift time.Duration) (int64, error)
	SoftDeleteMaster(ctx context.Context, q database.Queryable, id string, at time.Time) error
	DeleteException(ctx context.Context, q database.Queryable, id string) error
	DeleteExceptionsFrom(ctx context.Context, q database.Queryable, uid string, from time.Time) (int64, error)
}

type attendeesRepository interface {
	CreateAttendee(ctx context.Context, q database.Queryable, a *model.Attendee) error
	CopyAttendees(ctx context.Context, q database.Queryable, fromUID, toUID string) (int64, error)
	GetAttendees(ctx context.Context, q database.Queryable, uid string) ([]*model.Attendee, error)
	GetAttendeesBySeries(ctx context.Context, q database.Queryable, uids []string) ([]*model.Attendee, error)
	GetAttendee(ctx context.Context, q database.Queryable, uid, id string) (*model.Attendee, error)
	UpdateAttendeeStatus(ctx context.Context, q database.Queryable, uid, id string, status model.AttendeeStatus) error
	DeleteAttendee(ctx context.Context, q database.Queryable, uid, id string) error
}

type calendarsRepository interface {
	GetCalendarByOwner(ctx context.Context, q database.Queryable, ownerID string) (*model.Calendar, error)
	CreateCalendar(ctx context.Context, q database.Queryable, c *model.Calendar) error
}

func NewService(
	db database.PGX,
	eventsRepo eventsRepository,
	attendeesRepo attendeesRepository,
	calendarsRepo calendarsRepository,
	engine *rrule.Engine,
	logger *zap.SugaredLogger,
) *Service {
	return &Service{
		db:                  db,
		eventsRepository:    eventsRepo,
		attendeesRepository: attendeesRepo,
		calendarsRepository: calendarsRepo,
		engine:              engine,
		logger:              logger,
		now:                 time.Now,
	}
}
