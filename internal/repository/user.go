package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"status-sentiment/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type userRepository struct {
	db     *sqlx.DB
	sql    sq.StatementBuilderType
	logger *zap.Logger
}

func NewUserRepository(db *sqlx.DB, driver string, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, sql: builderFor(driver), logger: logger}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := r.GetUserByUsername(ctx, user.Username); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	query, args, err := r.sql.Insert("users").
		Columns("username", "password_hash", "created_at").
		Values(user.Username, user.PasswordHash, user.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return storageErr("create_user", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&user.ID); err != nil {
		r.logger.Error("Failed to create user", zap.String("username", user.Username), zap.Error(err))
		return storageErr("create_user", err)
	}
	return nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query, args, err := r.sql.Select("id", "username", "password_hash", "created_at").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, storageErr("get_user", err)
	}

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Failed to get user by username", zap.String("username", username), zap.Error(err))
		return nil, storageErr("get_user", err)
	}
	return &user, nil
}
