package api

import (
	"errors"
	"net/http"
	"trainlog/records-app/internal/repository"
	"trainlog/records-app/internal/service"

	"github.com/gin-gonic/gin"
)

// RecordsHandler holds the records service dependency.
type RecordsHandler struct {
	recordsService service.RecordsService
}

// NewRecordsHandler creates a new RecordsHandler.
func NewRecordsHandler(recordsService service.RecordsService) *RecordsHandler {
	return &RecordsHandler{recordsService: recordsService}
}

// --- Handler Methods ---

// ListRecords returns every exercise record of the authenticated user.
func (h *RecordsHandler) ListRecords(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	records, err := h.recordsService.ListRecords(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load records")
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetRecord returns one record by its exact exercise name. The name is
// a URL path segment, so spellings with slashes must be escaped by the
// caller; two spellings are two records by design.
func (h *RecordsHandler) GetRecord(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	exerciseName := c.Param("exerciseName")
	if exerciseName == "" {
		abortWithError(c, http.StatusBadRequest, "Exercise name is required")
		return
	}

	record, err := h.recordsService.GetRecord(c.Request.Context(), userID, exerciseName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "No record for this exercise")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load record")
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

// Recalculate rebuilds every record of the authenticated user from the
// full workout history. A snapshot of the previous aggregates is
// archived first, best effort.
func (h *RecordsHandler) Recalculate(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	records, err := h.recordsService.RecalculateAll(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to recalculate records")
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// SnapshotURL presigns a download link for a previously archived
// records snapshot. The object key comes from the server logs of the
// recalculation that wrote it.
func (h *RecordsHandler) SnapshotURL(c *gin.Context) {
	if _, err := getUserIDFromContext(c); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	objectKey := c.Query("key")
	if objectKey == "" {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'key' is required")
		return
	}

	url, err := h.recordsService.SnapshotDownloadURL(c.Request.Context(), objectKey)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to presign snapshot URL")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
