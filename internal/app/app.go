package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"status-sentiment/internal/artifact"
	"status-sentiment/internal/auth"
	"status-sentiment/internal/config"
	"status-sentiment/internal/crypto"
	"status-sentiment/internal/notify"
	"status-sentiment/internal/repository"
	"status-sentiment/internal/sentiment"
	"status-sentiment/internal/service"
)

// App owns every long-lived dependency. Artifacts are loaded exactly once
// here and shared read-only afterwards.
type App struct {
	Config    *config.Config
	DB        *sqlx.DB
	Artifacts *artifact.Set
	Statuses  *service.StatusService
	Users     repository.UserRepository
	Logger    *zap.Logger
}

// Bootstrap loads artifacts first so a missing model aborts before the
// store is touched, then opens and migrates the store.
func Bootstrap(cfg *config.Config, logger *zap.Logger) (*App, error) {
	set, err := artifact.Load(artifact.Paths{
		Vectorizer:   cfg.Artifacts.Vectorizer,
		Classifier:   cfg.Artifacts.Classifier,
		LabelEncoder: cfg.Artifacts.LabelEncoder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}
	logger.Info("Artifacts loaded",
		zap.Int("features", set.Vectorizer.Dim()),
		zap.Strings("labels", set.Labels.Names()))

	pipeline, err := sentiment.NewPipelineFromSet(set, cfg.Pipeline.MinWords, logger.Named("pipeline"))
	if err != nil {
		return nil, err
	}

	var cipher *crypto.Cipher
	if cfg.Storage.EncryptionKey != "" {
		cipher, err = crypto.NewCipher(cfg.Storage.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid storage.encryption_key: %w", err)
		}
		logger.Info("Status text encryption enabled")
	}

	db, err := repository.Open(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return nil, err
	}
	if err := repository.MigrateDB(db, cfg.Database.Driver, logger); err != nil {
		db.Close()
		return nil, err
	}

	var recommender *sentiment.Recommender
	if cfg.Features.Recommendations {
		recommender = sentiment.NewRecommender(cfg.Recommendations)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Features.Notifications {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram, "", nil, logger.Named("telegram"))
		if err != nil {
			db.Close()
			return nil, err
		}
		notifier = tg
	}

	history := repository.NewStatusRepository(db, cfg.Database.Driver, cipher, logger.Named("history"))
	statuses := service.NewStatusService(pipeline, set.Labels, history, recommender, notifier, logger.Named("statuses"))

	return &App{
		Config:    cfg,
		DB:        db,
		Artifacts: set,
		Statuses:  statuses,
		Users:     repository.NewUserRepository(db, cfg.Database.Driver, logger.Named("users")),
		Logger:    logger,
	}, nil
}

// AuthService builds the account service; it needs a JWT secret.
func (a *App) AuthService() (auth.Service, error) {
	return auth.NewService(a.Users, a.Config.Auth.JWTSecret, a.Config.Auth.TokenTTL, a.Logger.Named("auth"))
}

func (a *App) Close() error {
	return a.DB.Close()
}
