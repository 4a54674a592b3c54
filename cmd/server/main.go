package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/robfig/cron"
	config "social-executor/configs"
	"social-executor/internal/api/handlers"
	"social-executor/internal/api/middleware"
	job "social-executor/internal/jobs"
	"social-executor/internal/repository"
	"social-executor/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", cfg.Timezone, err)
	}

	if cfg.S3.QueueBucket == "" {
		log.Fatal("QUEUE_S3_BUCKET is not set")
	}

	if err := service.ValidateChannels(*cfg); err != nil {
		log.Fatalf("Invalid scheduler config: %v", err)
	}

	queueStore, err := repository.NewS3ObjectStore(*cfg, cfg.S3.QueueBucket)
	if err != nil {
		log.Fatalf("Failed to set up queue storage: %v", err)
	}

	mediaStore, err := repository.NewS3ObjectStore(*cfg, cfg.S3.MediaBucket)
	if err != nil {
		log.Fatalf("Failed to set up media storage: %v", err)
	}

	queueRepo := repository.NewQueueRepository(queueStore, cfg.S3.QueueKey)

	locks := service.NewPostLocks()
	igService := service.NewInstagramService(*cfg)
	fbService := service.NewFacebookService(*cfg)
	publishService := service.NewPublishService(igService, fbService, queueRepo)
	mediaService := service.NewMediaService(*cfg, mediaStore)
	postService := service.NewPostService(*cfg, queueRepo, publishService, mediaService, locks)
	schedulerService := service.NewSchedulerService(*cfg, queueRepo, publishService, locks, loc)

	app := fiber.New(fiber.Config{
		ReadTimeout:  15 * time.Minute,
		WriteTimeout: 15 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key",
		MaxAge:       3600,
	}))

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	post := handlers.NewPostHandler(postService)
	scheduler := handlers.NewSchedulerHandler(schedulerService)

	app.Get("/healthz", post.Healthz)
	app.Get("/approve", authMiddleware.AllowApprovalToken(), post.ApproveLink)

	guarded := app.Group("/", authMiddleware.RequireAPIKey())
	guarded.Post("/drafts", post.CreateDraft)
	guarded.Post("/approve", post.ApproveAPI)
	guarded.Post("/scheduler/run", scheduler.RunScheduler)
	guarded.Get("/posts", post.ListPosts)
	guarded.Get("/debug/post", post.DebugPost)

	c := cron.New()
	schedulerJob := job.NewSchedulerJob(schedulerService)
	if cfg.SchedulerCronAM != "" {
		c.AddFunc(cfg.SchedulerCronAM, schedulerJob.RunAM)
	}
	if cfg.SchedulerCronPM != "" {
		c.AddFunc(cfg.SchedulerCronPM, schedulerJob.RunPM)
	}
	if cfg.SchedulerCronAM != "" || cfg.SchedulerCronPM != "" {
		c.Start()
		defer c.Stop()
	}

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ListenAddr)

	gracefulShutdown(app)
}

func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	log.Println("Server shutdown complete.")
}
