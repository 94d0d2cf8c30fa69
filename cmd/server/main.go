package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trainlog/records-app/internal/api"
	"trainlog/records-app/internal/config"
	"trainlog/records-app/internal/repository/mongo"
	"trainlog/records-app/internal/service"
	"trainlog/records-app/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting trainlog records server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorf("failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
		mongo.EnsureRecordIndexes(ctx, appDB.Collection("exercise_records"))
		mongo.EnsureCatalogIndexes(ctx, appDB.Collection("exercise_catalog"))
		log.Info("Index creation process completed.")
	}()

	// --- Initialize Snapshot Storage ---
	// Snapshots are optional: without a bucket the engine runs fine,
	// full recalculations just skip the pre-rebuild archive.
	var snapshots storage.SnapshotStorage
	if cfg.S3.BucketName != "" {
		snapshots, err = storage.NewS3Storage(cfg.S3)
		if err != nil {
			log.Warnf("snapshot storage unavailable, continuing without: %v", err)
			snapshots = nil
		}
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	recordRepo := mongo.NewMongoRecordRepository(appDB)
	catalogRepo := mongo.NewMongoCatalogRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	recordsService := service.NewRecordsService(recordRepo, workoutRepo, catalogRepo, userRepo, snapshots, service.RecordsOptions{
		StoreTimeout:        cfg.Engine.StoreTimeout,
		MergeRetryLimit:     cfg.Engine.MergeRetryLimit,
		RecalcConcurrency:   cfg.Engine.RecalcConcurrency,
		DefaultBodyweightKg: cfg.Engine.DefaultBodyweightKg,
	})
	workoutService := service.NewWorkoutService(workoutRepo, recordsService)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, workoutService, recordsService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Infof("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Info("Server exiting.")
}
