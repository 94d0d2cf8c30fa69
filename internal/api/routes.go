package api

import (
	"net/http"
	"trainlog/records-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	workoutService service.WorkoutService,
	recordsService service.RecordsService,
) {
	authHandler := NewAuthHandler(authService)
	workoutHandler := NewWorkoutHandler(workoutService)
	recordsHandler := NewRecordsHandler(recordsService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.GetProfile)
		protected.PUT("/me/bodyweight", authHandler.UpdateBodyweight)

		// --- Workout log ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.LogWorkout)
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.GET("/:workoutId", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:workoutId", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:workoutId", workoutHandler.DeleteWorkout)
		}

		// --- Records ---
		recordsGroup := protected.Group("/records")
		{
			recordsGroup.GET("", recordsHandler.ListRecords)
			// Fixed segments before the wildcard, gin matches them first.
			recordsGroup.POST("/recalculate", recordsHandler.Recalculate)
			recordsGroup.GET("/snapshot-url", recordsHandler.SnapshotURL)
			recordsGroup.GET("/:exerciseName", recordsHandler.GetRecord)
		}
	}
}
