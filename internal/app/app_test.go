package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"status-sentiment/internal/artifact"
	"status-sentiment/internal/config"
)

func writeArtifacts(t *testing.T, dir string) config.ArtifactsConfig {
	t.Helper()
	write := func(name string, v any) string {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return path
	}
	return config.ArtifactsConfig{
		Vectorizer: write("tfidf_vectorizer.json", artifact.VectorizerFile{
			Vocabulary: map[string]int{"senang": 0, "sedih": 1},
			IDF:        []float64{1, 1},
		}),
		Classifier: write("logistic_regression.json", artifact.ClassifierFile{
			Coef:      [][]float64{{-2, 2}, {0, 0}, {2, -2}},
			Intercept: []float64{0, 0, 0},
			Classes:   []int{0, 1, 2},
		}),
		LabelEncoder: write("label_encoder.json", artifact.LabelFile{Classes: []string{"negatif", "netral", "positif"}}),
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Artifacts = writeArtifacts(t, dir)
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = filepath.Join(dir, "status.db")
	cfg.Pipeline.MinWords = 3
	cfg.Features.Recommendations = true
	cfg.Auth.JWTSecret = "bootstrap-test-secret"
	return cfg
}

func TestBootstrap(t *testing.T) {
	a, err := Bootstrap(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Statuses.Analyze(context.Background(), "local:dina", "hari ini aku senang sekali")
	require.NoError(t, err)
	assert.Equal(t, "POSITIF", res.Entry.Label)
	assert.NotEmpty(t, res.Recommendations)

	_, err = a.AuthService()
	assert.NoError(t, err)
}

func TestBootstrap_MissingArtifactFailsFast(t *testing.T) {
	cfg := testConfig(t)
	cfg.Artifacts.Classifier = filepath.Join(t.TempDir(), "missing.json")

	_, err := Bootstrap(cfg, zap.NewNop())
	require.ErrorIs(t, err, artifact.ErrNotLoaded)
	_, statErr := os.Stat(cfg.Database.DSN)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBootstrap_BadEncryptionKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.EncryptionKey = "dG9vIHNob3J0"

	_, err := Bootstrap(cfg, zap.NewNop())
	assert.Error(t, err)
}
