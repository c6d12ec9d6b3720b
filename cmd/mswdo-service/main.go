package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authhandler "github.com/mesias/mswdo-backend/internal/auth/handler"
	"github.com/mesias/mswdo-backend/internal/auth/jwt"
	authservice "github.com/mesias/mswdo-backend/internal/auth/service"
	"github.com/mesias/mswdo-backend/internal/welfare/events"
	"github.com/mesias/mswdo-backend/internal/welfare/handler"
	"github.com/mesias/mswdo-backend/internal/welfare/repository"
	"github.com/mesias/mswdo-backend/internal/welfare/service"
	"github.com/mesias/mswdo-backend/internal/welfare/upload"
	"github.com/mesias/mswdo-backend/internal/welfare/validation"
	"github.com/mesias/mswdo-backend/pkg/config"
	"github.com/mesias/mswdo-backend/pkg/database"
	"github.com/mesias/mswdo-backend/pkg/httputil"
	"github.com/mesias/mswdo-backend/pkg/logger"
	"github.com/mesias/mswdo-backend/pkg/messaging"
	"github.com/mesias/mswdo-backend/pkg/metrics"
)

const serviceName = "mswdo-service"

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting MSWDO service")

	if err := validation.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// The broker is optional; without it events are dropped.
	var sink messaging.EventSink = messaging.NopSink{}
	var rmq *messaging.RabbitMQ
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		publisher, err := messaging.NewPublisher(rmq, cfg.RabbitMQ.Exchange, serviceName, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		sink = publisher
		go rmq.Watch(ctx)
	}

	// Repositories
	users := repository.NewUserRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	beneficiaries := repository.NewBeneficiaryRepository(db)
	programs := repository.NewProgramRepository(db)
	applications := repository.NewApplicationRepository(db)
	schedules := repository.NewScheduleRepository(db)
	notifications := repository.NewNotificationRepository(db)
	reports := repository.NewDeceasedReportRepository(db)

	// Services
	jwtManager := jwt.NewManager(&cfg.JWT)
	welfareEvents := events.NewWelfareEventPublisher(sink, log)
	scopes := service.NewScopeResolver(assignments, beneficiaries)
	notifier := service.NewNotifier(notifications, users, assignments, log)
	engine := service.NewEngine(db, applications, schedules, beneficiaries, programs, scopes, notifier, welfareEvents, log)

	storage, err := upload.NewDiskStorage(cfg.Upload)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	api := &handler.API{
		JWT:           jwtManager,
		Auth:          authhandler.NewAuthHandler(authservice.NewAuthService(db, users, beneficiaries, jwtManager, welfareEvents, log), log),
		Users:         handler.NewUserHandler(service.NewUserService(db, users, assignments, log), log),
		Beneficiaries: handler.NewBeneficiaryHandler(service.NewBeneficiaryService(beneficiaries, scopes, log), log),
		Applications:  handler.NewApplicationHandler(engine, log),
		Programs:      handler.NewProgramHandler(service.NewProgramService(programs, applications, beneficiaries, scopes, log), log),
		Notifications: handler.NewNotificationHandler(service.NewNotificationService(notifications)),
		Deceased:      handler.NewDeceasedHandler(service.NewDeceasedService(db, reports, beneficiaries, applications, notifier, welfareEvents, log), log),
		Upload:        handler.NewUploadHandler(storage, log),
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.Metrics.Enabled {
		r.Use(metrics.InstrumentHandler)
		r.Handle("/metrics", metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		dbHealth := db.Health(r.Context())
		status, code := "healthy", http.StatusOK
		if dbHealth["status"] != "up" {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		body := map[string]interface{}{
			"status":   status,
			"service":  serviceName,
			"database": dbHealth,
		}
		if rmq != nil {
			body["rabbitmq"] = rmq.Health()
		} else {
			body["rabbitmq"] = map[string]string{"status": "disabled"}
		}
		httputil.JSON(w, code, body)
	})

	r.Route("/api", api.Mount)

	fileServer := http.StripPrefix(cfg.Upload.PublicPath+"/", http.FileServer(http.Dir(storage.Dir())))
	r.Handle(cfg.Upload.PublicPath+"/*", fileServer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
