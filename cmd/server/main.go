package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rental/internal/app"
	"rental/internal/calendar"
	"rental/internal/config"
	"rental/internal/events"
	"rental/internal/handler"
	"rental/internal/middleware"
	internalRedis "rental/internal/redis"
	"rental/internal/repository"
	"rental/internal/repository/memory"
	"rental/internal/repository/postgres"
	"rental/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// PostgreSQL is only needed for a persistent catalog.
	var db *sql.DB
	if cfg.Booking.CatalogSource == config.SourcePostgres {
		db, err = app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to PostgreSQL")

		if err := prepareCatalog(ctx, db, cfg.Booking.SeedCatalog); err != nil {
			log.Fatalf("failed to prepare catalog: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Booking.NeedsRedis() {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Connected to Redis")
	}

	var publisher events.Publisher = events.LogPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Printf("Publishing booking events to %s on %v", cfg.Kafka.Topic, cfg.Kafka.Brokers)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("failed to close event publisher: %v", err)
		}
	}()

	// Wire dependencies.
	server, err := wireServer(db, redisClient, publisher, nrApp, location, cfg)
	if err != nil {
		log.Fatalf("failed to wire server: %v", err)
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s (catalog=%s, sessions=%s)",
			cfg.Server.Port, cfg.Booking.CatalogSource, cfg.Booking.SessionStore)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Let a running payment finish before the server goes away.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second+cfg.Booking.PaymentDelay)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// prepareCatalog creates the catalog tables and, when the catalog is empty
// and seeding is on, loads the built-in vehicles.
func prepareCatalog(ctx context.Context, db *sql.DB, seed bool) error {
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	if !seed {
		return nil
	}

	existing, err := postgres.NewVehicleRepository(db).GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	vehicles, err := memory.SeedVehicles()
	if err != nil {
		return err
	}
	if err := postgres.SeedCatalog(ctx, db, vehicles); err != nil {
		return err
	}
	log.Printf("Seeded catalog with %d vehicles", len(vehicles))
	return nil
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	publisher events.Publisher,
	nrApp *newrelic.Application,
	location *time.Location,
	cfg *config.Config,
) (*http.Server, error) {
	// Initialize repositories.
	var vehicleRepo repository.VehicleRepository
	if db != nil {
		vehicleRepo = postgres.NewVehicleRepository(db)
		if redisClient != nil && cfg.Booking.CacheCatalog {
			vehicleRepo = internalRedis.NewCachedVehicleRepository(vehicleRepo, internalRedis.NewCacheStore(redisClient))
		}
	} else {
		seeded, err := memory.NewSeededVehicleRepository()
		if err != nil {
			return nil, err
		}
		vehicleRepo = seeded
	}

	var (
		sessionRepo      repository.SessionRepository
		locker           service.SessionLocker
		idempotencyStore middleware.ResponseStore
	)
	if cfg.Booking.SessionStore == config.SourceRedis {
		sessionRepo = internalRedis.NewSessionStore(redisClient, cfg.Booking.SessionTTL)
		locker = internalRedis.NewLockStore(redisClient)
		idempotencyStore = middleware.NewRedisResponseStore(redisClient)
	} else {
		sessionRepo = memory.NewSessionRepository(cfg.Booking.SessionTTL)
		locker = service.NewLocalLocker()
		idempotencyStore = middleware.NewMemoryResponseStore()
	}

	// Initialize services.
	clock := calendar.SystemClock{}
	notificationService := service.NewNotificationService(publisher)
	receiptService := service.NewReceiptService()
	catalogService := service.NewCatalogService(vehicleRepo, clock, location)
	sessionService := service.NewSessionService(service.SessionServiceDeps{
		Sessions:          sessionRepo,
		Vehicles:          vehicleRepo,
		Locker:            locker,
		PSP:               service.NewMockPSP(cfg.Booking.PaymentDelay),
		IDs:               service.NewTimestampIDGenerator(clock, nil),
		Notifier:          notificationService,
		Clock:             clock,
		Location:          location,
		RecordBookedDates: cfg.Booking.RecordBookedDates,
		LockTTL:           cfg.Booking.ConfirmLockTTL(),
	})

	// Initialize handlers.
	vehicleHandler := handler.NewVehicleHandler(catalogService)
	sessionHandler := handler.NewSessionHandler(sessionService, receiptService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		VehicleHandler:   vehicleHandler,
		SessionHandler:   sessionHandler,
		IdempotencyStore: idempotencyStore,
		NewRelicApp:      nrApp,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
	})

	// Confirm blocks for the payment delay, so writes must outlast it.
	writeTimeout := cfg.Server.WriteTimeout
	if floor := cfg.Booking.PaymentDelay + 5*time.Second; writeTimeout < floor {
		writeTimeout = floor
	}

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: writeTimeout,
	}, nil
}
