package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/config"
	"github.com/Xensen008/Pixify/internal/repository"
	"github.com/Xensen008/Pixify/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Run executes the one-shot image-URL maintenance flow: sign in, rewrite
// every stored image URL in the first page of each collection to its
// direct form, report the count.
func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Backend bindings
	client := backend.NewClient(cfg.Backend.Endpoint, cfg.Backend.Project, cfg.Backend.DatabaseID)
	avatars := backend.NewAvatarsClient(cfg.Avatars.Endpoint)
	storage, err := backend.NewS3Storage(ctx,
		cfg.Storage.Region,
		cfg.Storage.Bucket,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Endpoint,
		cfg.Storage.PublicBase,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}

	// Repositories
	userRepo := repository.NewUserRepository(client, cfg.Backend.UserCollection)
	postRepo := repository.NewPostRepository(client, cfg.Backend.PostCollection)

	// Services
	fileService := services.NewFileService(storage)
	pending := services.NewPendingSignupStore(cfg.Backend.StateFile)
	authService := services.NewAuthService(client, avatars, userRepo, pending)
	maintenance := services.NewMaintenanceService(postRepo, userRepo, fileService, avatars)

	// The maintenance flow needs a signed-in session; credentials come
	// from the environment, never the config file.
	email := os.Getenv("PIXIFY_EMAIL")
	password := os.Getenv("PIXIFY_PASSWORD")
	if email == "" || password == "" {
		log.Fatal().Msg("PIXIFY_EMAIL and PIXIFY_PASSWORD must be set")
	}
	if _, err := authService.SignIn(ctx, email, password); err != nil {
		log.Fatal().Err(err).Msg("Failed to sign in")
	}
	defer func() {
		if err := authService.SignOut(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to sign out")
		}
	}()

	log.Info().Msg("Cleaning image URLs")
	updated, err := maintenance.CleanImageURLs(ctx)
	if err != nil {
		log.Error().Err(err).Int("updated", updated).Msg("Image URL cleanup failed")
		return
	}
	log.Info().Int("updated", updated).Msg("Image URL cleanup finished")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
