package handler

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"status-sentiment/internal/middleware"
	"status-sentiment/internal/models"
	"status-sentiment/internal/service"
)

// StatusHandler serves classification and history endpoints for the
// authenticated user.
type StatusHandler struct {
	statuses *service.StatusService
	logger   *zap.Logger
}

func NewStatusHandler(statuses *service.StatusService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{statuses: statuses, logger: logger}
}

// RegisterRoutes registers the status routes on an authenticated group.
func (h *StatusHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/classify", h.Classify)
	api.POST("/statuses", h.Analyze)

	history := api.Group("/history")
	{
		history.POST("", h.Record)
		history.GET("", h.List)
		history.DELETE("", h.Clear)
		history.GET("/summary", h.Summary)
		history.GET("/export/csv", h.ExportCSV)
		history.GET("/export/json", h.ExportJSON)
	}
}

// Classify runs the pipeline without storing the result.
func (h *StatusHandler) Classify(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.statuses.Classify(c.Request.Context(), middleware.UserID(c), req.Text)
	if err != nil {
		respondError(c, h.logger, "classify status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"label":           result.Label,
		"confidence":      result.Confidence,
		"recommendations": h.statuses.Recommendations(result.Label),
	})
}

// Analyze classifies and records in one call.
func (h *StatusHandler) Analyze(c *gin.Context) {
	var req models.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.statuses.Analyze(c.Request.Context(), middleware.UserID(c), req.Text)
	if err != nil {
		respondError(c, h.logger, "analyze status", err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *StatusHandler) Record(c *gin.Context) {
	var req models.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.statuses.RecordResult(c.Request.Context(), middleware.UserID(c), req.Text, req.Label, req.Confidence)
	if err != nil {
		respondError(c, h.logger, "record status", err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *StatusHandler) List(c *gin.Context) {
	entries, err := h.statuses.ListHistory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, "list history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"statuses": entries,
		"total":    len(entries),
	})
}

func (h *StatusHandler) Clear(c *gin.Context) {
	deleted, err := h.statuses.ClearHistory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, "clear history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *StatusHandler) Summary(c *gin.Context) {
	summary, err := h.statuses.Summary(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, "summarise history", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportCSV exports the user's history to CSV
func (h *StatusHandler) ExportCSV(c *gin.Context) {
	entries, err := h.statuses.ListHistory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, "export history", err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=status_history.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"id_status", "tanggal_status", "isi_status", "label_sentimen", "kepercayaan"})
	for _, e := range entries {
		writer.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Date.String(),
			e.Text,
			e.Label,
			strconv.FormatFloat(e.Confidence, 'f', 2, 64),
		})
	}
}

// ExportJSON exports the user's history to JSON
func (h *StatusHandler) ExportJSON(c *gin.Context) {
	entries, err := h.statuses.ListHistory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, "export history", err)
		return
	}

	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", "attachment; filename=status_history.json")

	encoder := json.NewEncoder(c.Writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		h.logger.Error("Failed to write JSON export", zap.Error(err))
	}
}
