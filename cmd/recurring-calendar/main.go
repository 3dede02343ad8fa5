package main

import (
	"context"
	"log"
	"net/http"

	"github.com/SergeyKozhin/recurring-calendar/internal/api"
	events_service "github.com/SergeyKozhin/recurring-calendar/internal/business/events"
	"github.com/SergeyKozhin/recurring-calendar/internal/cleanup"
	"github.com/SergeyKozhin/recurring-calendar/internal/config"
	"github.com/SergeyKozhin/recurring-calendar/internal/database"
	"github.com/SergeyKozhin/recurring-calendar/internal/database/attendees"
	"github.com/SergeyKozhin/recurring-calendar/internal/database/calendars"
	"github.com/SergeyKozhin/recurring-calendar/internal/database/events"
	"github.com/SergeyKozhin/recurring-calendar/internal/pkg/rrule"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx := context.Background()

	conf, err := config.Load()
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}

	logger, err := initLogger(conf.Production)
	if err != nil {
		log.Fatalf("unable to initializae logger: %v", err)
	}

	db, err := database.NewPGX(ctx, conf.PostgresURL)
	if err != nil {
		log.Fatalf("unable to initializae db: %v", err)
	}
	eventsRepository := events.NewRepository()
	attendeesRepository := attendees.NewRepository()
	calendarsRepository := calendars.NewRepository()

	eventsService := events_service.NewService(
		db,
		eventsRepository,
		attendeesRepository,
		calendarsRepository,
		rrule.NewEngine(conf.MaxOccurrences),
		logger,
	)

	worker := cleanup.NewWorker(db, logger, eventsRepository, conf.CleanupRetention)
	if err := worker.Start(ctx, conf.CleanupSchedule); err != nil {
		logger.Fatalw("unable to start cleanup worker", "err", err)
	}

	api, err := api.NewApi(logger, eventsService, api.Options{
		MaxBodySize: conf.MaxBodySize,
		MaxWindow:   conf.MaxWindow,
	})
	if err != nil {
		logger.Fatalw("unable to initializae api", "err", err)
	}

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + conf.Port,
		Handler:  api,
		ErrorLog: errLogger,
	}

	closer.Bind(func() {
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Errorw("server shutdown", "err", err)
		}
	})

	go func() {
		logger.Infow("Started server", "port", conf.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("server error", "err", err)
			closer.Close()
		}
	}()

	closer.Hold()
}

func initLogger(production bool) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if production {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}
