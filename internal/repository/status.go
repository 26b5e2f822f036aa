package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"status-sentiment/internal/crypto"
	"status-sentiment/internal/models"
)

const statusTable = "status"

var statusColumns = []string{"id_status", "id_user", "isi_status", "label_sentimen", "kepercayaan", "tanggal_status"}

// StatusRepository is the history of classified statuses. Entries are
// immutable; the only removal is a full purge per user.
type StatusRepository interface {
	Append(ctx context.Context, userID, text, label string, confidence float64, date models.Date) (models.StatusEntry, error)
	Query(ctx context.Context, userID string) ([]models.StatusEntry, error)
	Purge(ctx context.Context, userID string) (int64, error)
	Summary(ctx context.Context, userID string) (*models.HistorySummary, error)
}

type statusRepository struct {
	db     *sqlx.DB
	sql    sq.StatementBuilderType
	cipher *crypto.Cipher
	logger *zap.Logger
}

// NewStatusRepository builds the history store. cipher may be nil, in which
// case status text is stored as given.
func NewStatusRepository(db *sqlx.DB, driver string, cipher *crypto.Cipher, logger *zap.Logger) StatusRepository {
	return &statusRepository{
		db:     db,
		sql:    builderFor(driver),
		cipher: cipher,
		logger: logger,
	}
}

func (r *statusRepository) Append(ctx context.Context, userID, text, label string, confidence float64, date models.Date) (models.StatusEntry, error) {
	stored := text
	if r.cipher != nil {
		sealed, err := r.cipher.Seal(text)
		if err != nil {
			return models.StatusEntry{}, storageErr("append", err)
		}
		stored = sealed
	}

	query, args, err := r.sql.Insert(statusTable).
		Columns("isi_status", "label_sentimen", "kepercayaan", "tanggal_status", "id_user").
		Values(stored, label, confidence, date, userID).
		Suffix("RETURNING id_status").
		ToSql()
	if err != nil {
		return models.StatusEntry{}, storageErr("append", err)
	}

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		r.logger.Error("Failed to append status", zap.String("user_id", userID), zap.Error(err))
		return models.StatusEntry{}, storageErr("append", err)
	}

	return models.StatusEntry{
		ID:         id,
		UserID:     userID,
		Text:       text,
		Label:      label,
		Confidence: confidence,
		Date:       date,
	}, nil
}

func (r *statusRepository) Query(ctx context.Context, userID string) ([]models.StatusEntry, error) {
	query, args, err := r.sql.Select(statusColumns...).
		From(statusTable).
		Where(sq.Eq{"id_user": userID}).
		OrderBy("id_status DESC").
		ToSql()
	if err != nil {
		return nil, storageErr("query", err)
	}

	entries := []models.StatusEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		r.logger.Error("Failed to query history", zap.String("user_id", userID), zap.Error(err))
		return nil, storageErr("query", err)
	}

	if r.cipher != nil {
		for i := range entries {
			plain, err := r.cipher.Open(entries[i].Text)
			if err != nil {
				r.logger.Error("Failed to decrypt status", zap.Int64("id_status", entries[i].ID), zap.Error(err))
				return nil, storageErr("query", err)
			}
			entries[i].Text = plain
		}
	}

	return entries, nil
}

func (r *statusRepository) Purge(ctx context.Context, userID string) (int64, error) {
	query, args, err := r.sql.Delete(statusTable).
		Where(sq.Eq{"id_user": userID}).
		ToSql()
	if err != nil {
		return 0, storageErr("purge", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to purge history", zap.String("user_id", userID), zap.Error(err))
		return 0, storageErr("purge", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, storageErr("purge", err)
	}

	return deleted, nil
}

// Summary aggregates a user's history per label and per (date, label) in
// one transaction so both views see the same rows.
func (r *statusRepository) Summary(ctx context.Context, userID string) (*models.HistorySummary, error) {
	byLabelQuery, byLabelArgs, err := r.sql.Select("label_sentimen", "COUNT(*) AS total", "AVG(kepercayaan) AS mean_confidence").
		From(statusTable).
		Where(sq.Eq{"id_user": userID}).
		GroupBy("label_sentimen").
		OrderBy("label_sentimen").
		ToSql()
	if err != nil {
		return nil, storageErr("summary", err)
	}

	dailyQuery, dailyArgs, err := r.sql.Select("tanggal_status", "label_sentimen", "COUNT(*) AS total").
		From(statusTable).
		Where(sq.Eq{"id_user": userID}).
		GroupBy("tanggal_status", "label_sentimen").
		OrderBy("tanggal_status", "label_sentimen").
		ToSql()
	if err != nil {
		return nil, storageErr("summary", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, storageErr("summary", err)
	}
	defer tx.Rollback()

	summary := &models.HistorySummary{
		UserID:  userID,
		ByLabel: []models.LabelCount{},
		Daily:   []models.DailyCount{},
	}
	if err := tx.SelectContext(ctx, &summary.ByLabel, byLabelQuery, byLabelArgs...); err != nil {
		r.logger.Error("Failed to summarise history by label", zap.String("user_id", userID), zap.Error(err))
		return nil, storageErr("summary", err)
	}
	if err := tx.SelectContext(ctx, &summary.Daily, dailyQuery, dailyArgs...); err != nil {
		r.logger.Error("Failed to summarise history by day", zap.String("user_id", userID), zap.Error(err))
		return nil, storageErr("summary", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr("summary", err)
	}

	var weighted float64
	for _, lc := range summary.ByLabel {
		summary.Total += lc.Count
		weighted += lc.MeanConfidence * float64(lc.Count)
	}
	if summary.Total > 0 {
		summary.MeanConfidence = weighted / float64(summary.Total)
	}

	return summary, nil
}
