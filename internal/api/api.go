package api

import (
	"context"
	"net/http"
	"time"

	"github.com/SergeyKozhin/recurring-calendar/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Api struct {
	handler     http.Handler
	logger      *zap.SugaredLogger
	maxBodySize int64
	maxWindow   time.Duration
	now         func() time.Time

	eventsService eventsService
}

type eventsService interface {
	CreateSeries(ctx context.Context, ownerID string, info *model.SeriesCreate) (string, error)
	ReadAll(ctx context.Context, scope model.CalendarScope, w model.Window) ([]*model.Occurrence, error)
	ReadOne(ctx context.Context, id string) (*model.Occurrence, error)
	Update(ctx context.Context, id string, scope model.Scope, patch *model.EventPatch) error
	Delete(ctx context.Context, id string, req model.DeleteRequest) error
	ListSeries(ctx context.Context, ownerID string) ([]*model.Series, error)

	GetAttendees(ctx context.Context, uid string) ([]*model.Attendee, error)
	AddAttendee(ctx context.Context, uid string, info *model.AttendeeCreate) (*model.Attendee, error)
	UpdateAttendeeStatus(ctx context.Context, uid, id string, status model.AttendeeStatus) (*model.Attendee, error)
	RemoveAttendee(ctx context.Context, uid, id string) error
}

type Options struct {
	MaxBodySize int64
	MaxWindow   time.Duration
}

func NewApi(logger *zap.SugaredLogger, eventsService eventsService, opts Options) (*Api, error) {
	a := &Api{
		logger:        logger,
		maxBodySize:   opts.MaxBodySize,
		maxWindow:     opts.MaxWindow,
		now:           time.Now,
		eventsService: eventsService,
	}
	a.setupHandler()

	return a, nil
}

func (a *Api) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.With(a.userCtx).Route("/", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", a.getEventsHandler)
			r.Post("/", a.createEventHandler)
			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", a.getEventHandler)
				r.Patch("/", a.updateEventHandler)
				r.Delete("/", a.deleteEventHandler)
			})
		})

		r.Route("/series/{uid}/attendees", func(r chi.Router) {
			r.Get("/", a.getAttendeesHandler)
			r.Post("/", a.addAttendeeHandler)
			r.Route("/{attendeeID}", func(r chi.Router) {
				r.Patch("/", a.updateAttendeeHandler)
				r.Delete("/", a.removeAttendeeHandler)
			})
		})

		r.Get("/calendars/export.ics", a.exportCalendarHandler)
	})

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
