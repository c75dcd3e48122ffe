package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/jhshakil/kocialpilot/configs"
	"github.com/jhshakil/kocialpilot/internal/api/handlers"
	job "github.com/jhshakil/kocialpilot/internal/jobs"
	"github.com/jhshakil/kocialpilot/internal/notify"
	"github.com/jhshakil/kocialpilot/internal/platform"
	"github.com/jhshakil/kocialpilot/internal/scheduler"
	"github.com/jhshakil/kocialpilot/internal/service"
	"github.com/jhshakil/kocialpilot/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	var db *sql.DB
	var kv store.KV
	if cfg.PostgresURI != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURI)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer closeDB(db)

		if err := db.Ping(); err != nil {
			log.Fatalf("Database is unreachable: %v", err)
		}
		if err := store.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("Failed to prepare database schema: %v", err)
		}
		kv = store.NewPostgresKV(db)
	} else {
		log.Println("Warning: POSTGRES_URI not set, falling back to in-memory storage")
		kv = store.NewMemoryKV()
	}

	postStore := store.NewPostStore(kv)
	connectionStore := store.NewConnectionStore(kv)

	registry := platform.DefaultRegistry(http.DefaultClient)

	facebookService := service.NewFacebookService(*cfg)
	connectionService := service.NewConnectionService(*cfg, connectionStore, facebookService)
	mediaService := service.NewMediaService(*cfg)
	postService := service.NewPostService(postStore, mediaService)
	aiService := service.NewAIService(*cfg)

	var notifier notify.Notifier
	if cfg.SlackWebhookURL != "" {
		notifier = notify.NewSlackNotifier(cfg.SlackWebhookURL)
	} else {
		notifier = notify.NewLogNotifier()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB, inline image payloads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	api := app.Group("/api")

	connection := handlers.NewConnectionHandler(*cfg, facebookService, connectionService)
	api.Get("/facebook/oauth", connection.OAuthURL)
	api.Get("/facebook/callback", connection.Callback)
	api.Post("/facebook/oauth", connection.OAuthExchange)
	api.Post("/facebook/connect", connection.Connect)
	api.Post("/facebook/refresh", connection.Refresh)
	api.Post("/facebook/test", connection.Test)
	api.Get("/connections", connection.GetConnection)
	api.Post("/connections/save", connection.SaveConnection)
	api.Post("/connections/remove", connection.RemoveConnection)

	publish := handlers.NewPublishHandler(registry)
	api.Post("/social-media/post", publish.Publish)

	post := handlers.NewPostHandler(postService)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/reschedule", post.ReschedulePost)
	api.Post("/posts/remove", post.RemovePost)

	generate := handlers.NewGenerateHandler(aiService)
	api.Post("/generate-content", generate.GenerateContent)
	api.Post("/generate-image", generate.GenerateImage)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(connectionService, facebookService)
	c := cron.New()
	c.AddFunc("@every 6h0m0s", refreshTokenJob.RefreshTokens)
	c.Start()
	defer c.Stop()

	publishScheduler := scheduler.New(postStore, connectionService, registry, notifier)
	if err := publishScheduler.Start(); err != nil {
		log.Fatalf("Failed to start publishing scheduler: %v", err)
	}
	defer publishScheduler.Stop()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, publishScheduler)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, s *scheduler.Scheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	s.Stop()
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	log.Println("Server shutdown complete.")
}
