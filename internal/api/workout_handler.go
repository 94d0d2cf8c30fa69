package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"
	"trainlog/records-app/internal/domain"
	"trainlog/records-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request/Response Structs ---

type LoggedSetRequest struct {
	Reps       int     `json:"reps" binding:"min=0"`
	Weight     float64 `json:"weight" binding:"min=0"`
	WeightUnit string  `json:"weightUnit" binding:"omitempty,oneof=kg lb km min"`
	Unilateral bool    `json:"unilateral"`
}

type LoggedExerciseRequest struct {
	Name       string             `json:"name" binding:"required"`
	Sets       []LoggedSetRequest `json:"sets" binding:"required"`
	Unilateral bool               `json:"unilateral"`
}

type WorkoutRequest struct {
	Date      time.Time               `json:"date" binding:"required"`
	Exercises []LoggedExerciseRequest `json:"exercises" binding:"required,min=1,dive"`
	Source    string                  `json:"source" binding:"omitempty,oneof=manual voice structured"`
}

// WorkoutResponse carries the stored workout, the records that were
// reconciled and a notice when some were not. The workout itself is
// durable even when the records engine fails.
type WorkoutResponse struct {
	Workout       *domain.Workout         `json:"workout"`
	Records       []domain.ExerciseRecord `json:"records,omitempty"`
	RecordsNotice string                  `json:"recordsNotice,omitempty"`
}

func (r *WorkoutRequest) toDomain(userID primitive.ObjectID) *domain.Workout {
	workout := &domain.Workout{
		UserID: userID,
		Date:   r.Date,
		Source: domain.WorkoutSource(r.Source),
	}
	for _, ex := range r.Exercises {
		exercise := domain.LoggedExercise{
			Name:       ex.Name,
			Unilateral: ex.Unilateral,
		}
		for _, set := range ex.Sets {
			unit := domain.WeightUnit(set.WeightUnit)
			if unit == "" {
				unit = domain.UnitKilograms
			}
			exercise.Sets = append(exercise.Sets, domain.LoggedSet{
				Reps:       set.Reps,
				Weight:     set.Weight,
				WeightUnit: unit,
				Unilateral: set.Unilateral,
			})
		}
		workout.Exercises = append(workout.Exercises, exercise)
	}
	return workout
}

func toWorkoutResponse(result *service.WorkoutResult) WorkoutResponse {
	resp := WorkoutResponse{
		Workout: result.Workout,
		Records: result.Records,
	}
	if result.RecordsErr != nil {
		// Generic notice only; details stay in the logs.
		resp.RecordsNotice = "could not update records"
	}
	return resp
}

// --- Handler Methods ---

// LogWorkout stores a new workout and merges it into the records.
func (h *WorkoutHandler) LogWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.workoutService.Log(c.Request.Context(), req.toDomain(userID))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to store workout")
		return
	}

	c.JSON(http.StatusCreated, toWorkoutResponse(result))
}

// UpdateWorkout replaces a workout and recalculates affected records.
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout := req.toDomain(userID)
	workout.ID = workoutID

	result, err := h.workoutService.Update(c.Request.Context(), workout)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, "Workout not found")
		case errors.Is(err, service.ErrNotWorkoutOwner):
			abortWithError(c, http.StatusForbidden, "Workout does not belong to this user")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update workout")
		}
		return
	}

	c.JSON(http.StatusOK, toWorkoutResponse(result))
}

// DeleteWorkout removes a workout and recalculates affected records.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), userID, workoutID); err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, "Workout not found")
		case errors.Is(err, service.ErrNotWorkoutOwner):
			abortWithError(c, http.StatusForbidden, "Workout does not belong to this user")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete workout")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetWorkout returns one workout of the authenticated user.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	workout, err := h.workoutService.GetByID(c.Request.Context(), userID, workoutID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, "Workout not found")
		case errors.Is(err, service.ErrNotWorkoutOwner):
			abortWithError(c, http.StatusForbidden, "Workout does not belong to this user")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load workout")
		}
		return
	}

	c.JSON(http.StatusOK, workout)
}

// ListWorkouts returns the user's history, date ascending.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workouts, err := h.workoutService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load workouts")
		return
	}

	c.JSON(http.StatusOK, workouts)
}
