package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Amund211/milestones/internal/adapters/achievementrepository"
	"github.com/Amund211/milestones/internal/adapters/cache"
	"github.com/Amund211/milestones/internal/adapters/database"
	"github.com/Amund211/milestones/internal/adapters/worldstate"
	"github.com/Amund211/milestones/internal/app"
	"github.com/Amund211/milestones/internal/catalog"
	"github.com/Amund211/milestones/internal/config"
	"github.com/Amund211/milestones/internal/logging"
	"github.com/Amund211/milestones/internal/ports"
	"github.com/Amund211/milestones/internal/reporting"
	"github.com/Amund211/milestones/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	ctx := context.Background()

	conf, err := config.ConfigFromEnv()
	if err != nil {
		slog.Error("Failed to load config", "error", err.Error())
		os.Exit(1)
	}

	instanceID := uuid.New().String()
	logger := slog.New(
		logging.NewGoogleCloudTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil), conf.GCPProject()),
	).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	logger.Info("Loaded config", "config", conf.NonSensitiveString())

	shutdownOTel, err := telemetry.SetupOTelSDK(ctx, "milestones")
	if err != nil {
		fail("Failed to set up OpenTelemetry", "error", err.Error())
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
		}
	}()

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(conf)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	definitions, err := catalog.Load(conf.DefinitionsPath(), logger.With("component", "catalog"))
	if err != nil {
		fail("Failed to load achievement definitions", "error", err.Error())
	}

	world, err := worldstate.Load(conf.WorldPath())
	if err != nil {
		fail("Failed to load world", "error", err.Error())
	}
	logger.Info("Loaded world", "homeBody", world.HomeBody())

	logger.Info("Initializing database connection")
	db, err := database.NewCloudsqlPostgresDatabase(conf)
	if err != nil {
		fail("Failed to initialize database connection", "error", err.Error())
	}
	logger.Info("Initialized database connection")

	repositorySchemaName := database.GetSchemaName(!conf.IsProduction())

	err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, repositorySchemaName)
	if err != nil {
		fail("Failed to migrate database", "error", err.Error())
	}

	achievementRepo := achievementrepository.NewPostgres(db, repositorySchemaName, definitions, time.Now)
	logger.Info("Initialized AchievementRepository")

	scoreCache := cache.NewTTLCache[float64](1 * time.Minute)

	recordEvent := app.BuildRecordEvent(definitions, world, achievementRepo, scoreCache)
	listAchievements := app.BuildListAchievements(achievementRepo, world)
	getTotalScore := app.BuildGetTotalScoreWithCache(scoreCache, achievementRepo, world)

	mux := http.NewServeMux()

	mux.HandleFunc(
		"POST /v1/events",
		ports.MakeRecordEventHandler(
			recordEvent,
			world.BodyMultiplier,
			logger.With("port", "events"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"GET /v1/achievements",
		ports.MakeListAchievementsHandler(
			listAchievements,
			logger.With("port", "achievements"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"GET /v1/score",
		ports.MakeGetTotalScoreHandler(
			getTotalScore,
			logger.With("port", "score"),
			sentryMiddleware,
		),
	)

	logger.Info("Init complete")
	err = http.ListenAndServe(fmt.Sprintf(":%s", conf.Port()), otelhttp.NewHandler(mux, "milestones"))
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
