package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"status-sentiment/internal/feed/vk"
	"status-sentiment/internal/models"
)

// ErrFeedUnavailable marks failures of the upstream social API.
var ErrFeedUnavailable = errors.New("feed source unavailable")

// WallFetcher reads posts from a social wall.
type WallFetcher interface {
	WallPosts(ctx context.Context, ownerID int64, limit int) ([]vk.Post, error)
}

// FeedService imports a VK user's own wall into their history.
type FeedService struct {
	statuses *StatusService
	limit    int
	logger   *zap.Logger
}

func NewFeedService(statuses *StatusService, limit int, logger *zap.Logger) *FeedService {
	return &FeedService{statuses: statuses, limit: limit, logger: logger}
}

// ImportWall fetches the newest posts of grant's user and records them
// under grant.HistoryID().
func (f *FeedService) ImportWall(ctx context.Context, grant vk.Grant, fetcher WallFetcher) (models.ImportReport, error) {
	posts, err := fetcher.WallPosts(ctx, grant.UserID, f.limit)
	if err != nil {
		f.logger.Error("Failed to fetch VK wall", zap.Int64("vk_user_id", grant.UserID), zap.Error(err))
		return models.ImportReport{UserID: grant.HistoryID()}, fmt.Errorf("%w: failed to fetch wall: %w", ErrFeedUnavailable, err)
	}

	// wall.get is newest first; record oldest first so ids follow post order.
	texts := make([]string, len(posts))
	for i, p := range posts {
		texts[len(posts)-1-i] = p.Text
	}

	return f.statuses.ImportTexts(ctx, grant.HistoryID(), texts)
}
