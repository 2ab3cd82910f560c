package main

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
	config "github.com/shintaro-0909/omnipost/configs"
	"github.com/shintaro-0909/omnipost/internal/adapter"
	"github.com/shintaro-0909/omnipost/internal/api/handlers"
	"github.com/shintaro-0909/omnipost/internal/api/middleware"
	"github.com/shintaro-0909/omnipost/internal/credentials"
	job "github.com/shintaro-0909/omnipost/internal/jobs"
	"github.com/shintaro-0909/omnipost/internal/notify"
	"github.com/shintaro-0909/omnipost/internal/publisher"
	"github.com/shintaro-0909/omnipost/internal/queue"
	"github.com/shintaro-0909/omnipost/internal/repository"
	"github.com/shintaro-0909/omnipost/internal/service"
	"github.com/shintaro-0909/omnipost/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	slog.SetDefault(logger.New(cfg.Env))

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error(err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return origin == cfg.FrontendURL
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	clock := clockwork.NewRealClock()

	socialAccountRepo := repository.NewSocialAccountRepository(db)
	credentialStore := repository.NewCredentialStore(socialAccountRepo, cfg.SecretKey)

	refresher := credentials.NewOAuthRefresher(*cfg)
	manager := credentials.NewManager(credentialStore, refresher, clock)
	notifier := notify.NewLogSink()

	factory := adapter.NewFactory(cfg.Adapter, clock)
	pub := publisher.New(factory, 10)
	assetService := service.NewAssetService(*cfg)

	queueW := queue.NewQueue(socialAccountRepo, credentialStore, pub, cfg.Adapter)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	platformH := handlers.NewPlatformHandler(socialAccountRepo, credentialStore, pub, refresher, factory, *cfg)
	app.Get("/auth/:platform", platformH.AddSocialAccount)
	app.Get("/auth/:platform/callback", platformH.AuthCallback)
	app.Get("/platforms/:platform/limits", platformH.GetPlatformLimits)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	publishH := handlers.NewPublishHandler(queueW, client)
	api.Post("/posts/publish", publishH.PublishPost)
	api.Post("/posts/validate", publishH.ValidateContent)

	assetH := handlers.NewAssetHandler(assetService)
	api.Post("/assets/upload", assetH.UploadAsset)

	// social accounts api routes
	api.Get("/accounts", platformH.ListSocialAccounts)
	api.Get("/accounts/validate", platformH.ValidateAccounts)
	api.Post("/accounts/remove", platformH.DeleteSocialAccount)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, credentialStore, manager, notifier, clock)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		slog.Info("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	slog.Info("Server shutdown complete.")
}
