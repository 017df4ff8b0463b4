package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"homefinder/pkg/models"
	"homefinder/pkg/services"
	"homefinder/pkg/store"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	submissionService services.SubmissionService
	progressService   services.ProgressService
	widgetBundlePath  string
}

// NewHandlers creates a new Handlers instance
func NewHandlers(submissionService services.SubmissionService, progressService services.ProgressService, widgetBundlePath string) *Handlers {
	return &Handlers{
		submissionService: submissionService,
		progressService:   progressService,
		widgetBundlePath:  widgetBundlePath,
	}
}

// SubmitFinderRequest is the body of POST /api/submit-finder
type SubmitFinderRequest struct {
	FinderType string          `json:"finderType" binding:"required"`
	FormData   json.RawMessage `json:"formData" binding:"required"`
}

// SaveProgressRequest is the body of POST /api/save-progress
type SaveProgressRequest struct {
	FinderType  string          `json:"finderType" binding:"required"`
	PartialData json.RawMessage `json:"partialData" binding:"required"`
	CurrentStep int             `json:"currentStep" binding:"required,min=1"`
	SessionID   string          `json:"sessionId" binding:"required"`
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// SubmitFinder processes a finished wizard session. The payload is
// re-validated server side regardless of what the client checked.
func (h *Handlers) SubmitFinder(c *gin.Context) {
	var req SubmitFinderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Error parsing submit request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	sub, fieldErrs, err := h.submissionService.Submit(models.FinderType(req.FinderType), req.FormData)
	if err != nil {
		if errors.Is(err, services.ErrUnknownFinderType) || errors.Is(err, services.ErrMalformedPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		log.Printf("Error processing submission: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save submission"})
		return
	}
	if fieldErrs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  fieldErrs,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      sub.ID,
	})
}

// SaveProgress upserts an in-flight wizard session by session ID
func (h *Handlers) SaveProgress(c *gin.Context) {
	var req SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Error parsing save-progress request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	p, created, err := h.progressService.Save(models.FinderType(req.FinderType), req.SessionID, req.CurrentStep, req.PartialData)
	if err != nil {
		if errors.Is(err, services.ErrUnknownFinderType) || errors.Is(err, services.ErrMalformedPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		log.Printf("Error saving progress: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save progress"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"success": true,
		"id":      p.PublicID,
	})
}

// GetProgress returns a saved session for resume
func (h *Handlers) GetProgress(c *gin.Context) {
	sessionID := c.Param("sessionId")

	p, err := h.progressService.Get(sessionID)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Progress not found"})
			return
		}
		log.Printf("Error loading progress: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"finderType":  p.FinderType,
			"currentStep": p.CurrentStep,
			"partialData": p.PartialData,
		},
	})
}

// CompleteProgress marks a partial submission as finished
func (h *Handlers) CompleteProgress(c *gin.Context) {
	id := c.Param("id")

	if err := h.progressService.Complete(id); err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Progress not found"})
			return
		}
		log.Printf("Error completing progress: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to complete progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// WidgetJS serves the embeddable widget bundle, 404 when the build
// artifact is not present
func (h *Handlers) WidgetJS(c *gin.Context) {
	if _, err := os.Stat(h.widgetBundlePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Widget bundle not found"})
		return
	}
	c.Header("Content-Type", "application/javascript")
	c.File(h.widgetBundlePath)
}
