package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"status-sentiment/internal/models"
	"status-sentiment/internal/notify"
	"status-sentiment/internal/repository"
	"status-sentiment/internal/sentiment"
)

var (
	ErrInvalidLabel      = errors.New("label is not part of the classifier label set")
	ErrInvalidConfidence = errors.New("confidence must be within [0, 100]")
	ErrEmptyUser         = errors.New("user id is required")
)

// Classifier is the inference pipeline as seen by the service.
type Classifier interface {
	Classify(userID, raw string) (models.Classification, error)
}

// LabelSet is the closed set of labels the classifier can produce.
type LabelSet interface {
	Contains(label string) bool
}

// StatusService exposes classify, record, list and clear over the pipeline
// and the history store, plus the conveniences built on them.
type StatusService struct {
	classifier  Classifier
	labels      LabelSet
	history     repository.StatusRepository
	recommender *sentiment.Recommender
	notifier    notify.Notifier
	now         func() time.Time
	logger      *zap.Logger
}

// NewStatusService wires the service. recommender may be nil to disable
// advice; notifier may be nil to disable alerts.
func NewStatusService(
	classifier Classifier,
	labels LabelSet,
	history repository.StatusRepository,
	recommender *sentiment.Recommender,
	notifier notify.Notifier,
	logger *zap.Logger,
) *StatusService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &StatusService{
		classifier:  classifier,
		labels:      labels,
		history:     history,
		recommender: recommender,
		notifier:    notifier,
		now:         time.Now,
		logger:      logger,
	}
}

// Classify runs the pipeline without persisting anything.
func (s *StatusService) Classify(ctx context.Context, userID, text string) (models.Classification, error) {
	return s.classifier.Classify(userID, text)
}

// RecordResult stores a classification under today's date. text must be
// the raw input that was classified.
func (s *StatusService) RecordResult(ctx context.Context, userID, text, label string, confidence float64) (models.StatusEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return models.StatusEntry{}, ErrEmptyUser
	}
	label = strings.ToUpper(strings.TrimSpace(label))
	if !s.labels.Contains(label) {
		return models.StatusEntry{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	if confidence < 0 || confidence > 100 {
		return models.StatusEntry{}, fmt.Errorf("%w: got %v", ErrInvalidConfidence, confidence)
	}

	entry, err := s.history.Append(ctx, userID, text, label, confidence, models.NewDate(s.now()))
	if err != nil {
		return models.StatusEntry{}, err
	}

	s.logger.Info("Status recorded",
		zap.Int64("id_status", entry.ID),
		zap.String("user_id", userID),
		zap.String("label", label),
		zap.Float64("confidence", confidence))

	s.notifier.StatusRecorded(ctx, entry)
	return entry, nil
}

// ListHistory returns the user's entries, most recent first.
func (s *StatusService) ListHistory(ctx context.Context, userID string) ([]models.StatusEntry, error) {
	return s.history.Query(ctx, userID)
}

// ClearHistory deletes every entry of the user and reports how many.
func (s *StatusService) ClearHistory(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.history.Purge(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("History cleared", zap.String("user_id", userID), zap.Int64("deleted", deleted))
	return deleted, nil
}

// Analyze classifies and, when accepted, records in one step.
func (s *StatusService) Analyze(ctx context.Context, userID, text string) (*models.AnalyzeResult, error) {
	result, err := s.classifier.Classify(userID, text)
	if err != nil {
		return nil, err
	}

	entry, err := s.RecordResult(ctx, userID, text, result.Label, result.Confidence)
	if err != nil {
		return nil, err
	}

	return &models.AnalyzeResult{
		Entry:           entry,
		Recommendations: s.Recommendations(entry.Label),
	}, nil
}

// Recommendations returns the advice for label, or nil when disabled.
func (s *StatusService) Recommendations(label string) []string {
	if s.recommender == nil {
		return nil
	}
	return s.recommender.For(label)
}

func (s *StatusService) Summary(ctx context.Context, userID string) (*models.HistorySummary, error) {
	return s.history.Summary(ctx, userID)
}

// ImportTexts feeds externally sourced texts through the same classify and
// record path as manual input. Short and empty texts are counted and
// skipped; the first storage or artifact failure stops the import.
func (s *StatusService) ImportTexts(ctx context.Context, userID string, texts []string) (models.ImportReport, error) {
	report := models.ImportReport{UserID: userID, Fetched: len(texts)}

	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if strings.TrimSpace(text) == "" {
			report.Empty++
			continue
		}

		result, err := s.classifier.Classify(userID, text)
		if errors.Is(err, sentiment.ErrTooShort) {
			report.Rejected++
			continue
		}
		if err != nil {
			return report, err
		}

		if _, err := s.RecordResult(ctx, userID, text, result.Label, result.Confidence); err != nil {
			return report, err
		}
		report.Recorded++
	}

	s.logger.Info("Texts imported",
		zap.String("user_id", userID),
		zap.Int("fetched", report.Fetched),
		zap.Int("recorded", report.Recorded),
		zap.Int("rejected", report.Rejected))
	return report, nil
}
