package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	api "github.com/maybepratikk/flexihub-landing-connect-sub000/api"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/config"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/database"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/models"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/realtime"
	"github.com/maybepratikk/flexihub-landing-connect-sub000/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}
	c := config.New()

	if level, err := zerolog.ParseLevel(config.GetString(c, "LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Info().Msg("Initializing app...")

	store, db, err := openStore(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	if db != nil {
		// If generating models, run generation and exit
		if config.GetBool(c, "GENERATE_MODELS", false) {
			log.Info().Msg("Generating models and query helpers...")
			models.GenerateModels(db)
			return
		}

		// If generating column mismatch report, run report and exit
		if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
			log.Info().Msg("Generating column mismatch report...")
			models.GenerateColumnMismatchReportStandalone(db)
			return
		}

		if config.GetBool(c, "AUTO_MIGRATE", false) {
			if err := database.Migrate(db); err != nil {
				log.Fatal().Err(err).Msg("Error migrating database")
			}
			log.Info().Msg("Database migrated")
		}
	}

	broker, err := openBroker(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to realtime broker")
	}

	market := services.NewMarketplace(store,
		services.WithPublisher(broker),
		services.WithNotifier(newNotifier(c)),
		services.WithInquiryRate(config.GetFloat(c, "INQUIRY_DEFAULT_RATE", services.DefaultInquiryRate)),
	)

	// Buffered so Start can report ErrServerClosed after shutdown without blocking.
	errChannel := make(chan error, 2)

	server, err := api.NewServer(api.Dependencies{Market: market, Events: broker}, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	// Closing the broker ends open event streams, which Shutdown would otherwise wait on.
	server.RegisterOnShutdown(func() {
		if err := broker.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing realtime broker")
		}
	})

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// openStore picks the storage backend from DB_TYPE. The returned *gorm.DB is
// nil for the in-memory store.
func openStore(c map[string]string) (database.Store, *gorm.DB, error) {
	dbType := config.GetString(c, "DB_TYPE", "")
	log.Info().Str("dbType", dbType).Msg("Selecting database")

	var dsn string
	switch dbType {
	case "supa":
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
		log.Info().Msg("Connecting to Supabase database...")
	case "postgres":
		dsn = config.GetString(c, "DATABASE_URL", "")
		log.Info().Msg("Connecting to Postgres database...")
	case "memory":
		log.Warn().Msg("Using in-memory store; data is lost on restart")
		return database.NewMemory(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}

	var replicas []string
	for _, replica := range strings.Split(config.GetString(c, "DB_REPLICA_DSNS", ""), ",") {
		if replica = strings.TrimSpace(replica); replica != "" {
			replicas = append(replicas, replica)
		}
	}

	logLevel := logger.Warn
	if config.GetBool(c, "DB_DEBUG", false) {
		logLevel = logger.Info
	}

	db, err := database.Open(database.Options{DSN: dsn, ReplicaDSNs: replicas, LogLevel: logLevel})
	if err != nil {
		return nil, nil, err
	}
	return database.New(db), db, nil
}

// openBroker uses Redis pub/sub when REDIS_URL is set so events reach every
// replica of the service, and an in-process hub otherwise.
func openBroker(c map[string]string) (realtime.Broker, error) {
	url := config.GetString(c, "REDIS_URL", "")
	if url == "" {
		log.Info().Msg("Realtime events served from in-process hub")
		return realtime.NewHub(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := realtime.DialRedis(ctx, url)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Realtime events served from Redis")
	return realtime.NewRedisBroker(client, config.GetString(c, "REALTIME_CHANNEL_PREFIX", "flexihub")), nil
}

func newNotifier(c map[string]string) services.Notifier {
	apiKey := config.GetString(c, "RESEND_API_KEY", "")
	if apiKey == "" {
		log.Warn().Msg("RESEND_API_KEY not set; e-mail notifications disabled")
		return services.NopNotifier{}
	}
	notifier, err := services.NewResendNotifier(apiKey, config.GetString(c, "RESEND_FROM_EMAIL", "FlexiHub <onboarding@resend.dev>"))
	if err != nil {
		log.Warn().Err(err).Msg("e-mail notifications disabled")
		return services.NopNotifier{}
	}
	return notifier
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
