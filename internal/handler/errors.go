package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"status-sentiment/internal/repository"
	"status-sentiment/internal/sentiment"
	"status-sentiment/internal/service"
)

// respondError maps domain errors to HTTP responses. Validation outcomes are
// not logged as errors.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var rejection *sentiment.Rejection
	var storageErr *repository.StorageError

	switch {
	case errors.As(err, &rejection):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "status is too short, write a longer message",
			"reason":    "too_short",
			"min_words": rejection.MinWords,
		})
	case errors.Is(err, sentiment.ErrTooShort):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "status is too short, write a longer message", "reason": "too_short"})
	case errors.Is(err, service.ErrInvalidLabel),
		errors.Is(err, service.ErrInvalidConfidence),
		errors.Is(err, service.ErrEmptyUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrFeedUnavailable):
		logger.Error("Failed to "+op, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "VK is unavailable, try again later"})
	case errors.As(err, &storageErr):
		logger.Error("Failed to "+op, zap.String("storage_op", storageErr.Op), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again"})
	default:
		logger.Error("Failed to "+op, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}
