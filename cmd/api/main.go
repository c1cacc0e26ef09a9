package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/classfit/backend/internal/config"
	"github.com/classfit/backend/internal/database"
	"github.com/classfit/backend/internal/handler"
	"github.com/classfit/backend/internal/repository"
	"github.com/classfit/backend/internal/service"
	"github.com/classfit/backend/internal/storage"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Upload archiving is optional; without a MinIO endpoint previews still
	// work, the original files just are not retained.
	var archive service.UploadArchive
	if cfg.MinIO.Endpoint != "" {
		minioClient, err := storage.NewMinIOClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		archive = minioClient
	} else {
		log.Println("MINIO_ENDPOINT not set, upload archiving disabled")
	}

	// Preview store backend
	var store service.PreviewStore
	switch cfg.Import.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = service.NewRedisPreviewStore(client)
	default:
		memStore := service.NewMemoryPreviewStore()
		defer memStore.Close()
		store = memStore
	}

	// Initialize repositories
	schoolRepo := repository.NewSchoolRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	recordRepo := repository.NewSportRecordRepository(db)
	sportTypeRepo := repository.NewSportTypeRepository(db)

	// Initialize services
	importService := service.NewImportService(
		store,
		schoolRepo,
		studentRepo,
		recordRepo,
		sportTypeRepo,
		archive,
		cfg.Import.PreviewTTL,
		cfg.Import.MaxUploadSize,
	)
	templateService := service.NewTemplateService(studentRepo)

	// Initialize handlers
	importHandler := handler.NewImportHandler(importService, templateService)
	schoolHandler := handler.NewSchoolHandler(schoolRepo)
	studentHandler := handler.NewStudentHandler(studentRepo, recordRepo)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Import.MaxUploadSize) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error": fiber.Map{
					"code":    "INTERNAL_ERROR",
					"message": err.Error(),
				},
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORS.Origins, ","),
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// API v1 routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Import routes
	importRoutes := api.Group("/import")
	importRoutes.Post("/students/preview", importHandler.PreviewStudents)
	importRoutes.Post("/records/preview", importHandler.PreviewRecords)
	importRoutes.Get("/preview/:preview_id", importHandler.GetPreview)
	importRoutes.Get("/preview/:preview_id/file", importHandler.GetPreviewFile)
	importRoutes.Post("/execute", importHandler.Execute)
	importRoutes.Delete("/preview/:preview_id", importHandler.Cancel)
	importRoutes.Get("/templates/students", importHandler.DownloadStudentTemplate)
	importRoutes.Get("/templates/records", importHandler.DownloadRecordsTemplate)

	// School routes
	schoolRoutes := api.Group("/schools")
	schoolRoutes.Get("/", schoolHandler.List)
	schoolRoutes.Post("/", schoolHandler.Create)
	schoolRoutes.Get("/:id", schoolHandler.Get)

	// Student routes
	studentRoutes := api.Group("/students")
	studentRoutes.Get("/", studentHandler.List)
	studentRoutes.Post("/", studentHandler.Create)
	studentRoutes.Get("/:id", studentHandler.Get)
	studentRoutes.Get("/:id/records", studentHandler.GetRecords)
	studentRoutes.Delete("/:id", studentHandler.Delete)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
