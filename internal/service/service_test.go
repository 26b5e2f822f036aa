package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"status-sentiment/internal/artifact"
	"status-sentiment/internal/feed/vk"
	"status-sentiment/internal/models"
	"status-sentiment/internal/repository"
	"status-sentiment/internal/sentiment"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testArtifacts(t *testing.T) *artifact.Set {
	t.Helper()
	v, err := artifact.NewVectorizer(artifact.VectorizerFile{
		Vocabulary: map[string]int{"great": 0, "sad": 1, "today": 2, "feel": 3},
		IDF:        []float64{1.5, 1.5, 1.1, 1.2},
		Norm:       "l2",
	})
	require.NoError(t, err)
	c, err := artifact.NewClassifier(artifact.ClassifierFile{
		Coef:      [][]float64{{-1, 3, 0, 0}, {0, 0, 0.5, 0.2}, {3, -1, 0, 0}},
		Intercept: []float64{0, 0.1, 0},
		Classes:   []int{0, 1, 2},
	})
	require.NoError(t, err)
	l, err := artifact.NewLabels(artifact.LabelFile{Classes: []string{"negative", "neutral", "positive"}})
	require.NoError(t, err)
	return &artifact.Set{Vectorizer: v, Classifier: c, Labels: l}
}

type recordingNotifier struct {
	entries []models.StatusEntry
}

func (n *recordingNotifier) StatusRecorded(_ context.Context, e models.StatusEntry) {
	n.entries = append(n.entries, e)
}

type fixture struct {
	svc      *StatusService
	notifier *recordingNotifier
	set      *artifact.Set
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.Open(repository.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.MigrateDB(db, repository.DriverSQLite, zap.NewNop()))

	set := testArtifacts(t)
	pipeline, err := sentiment.NewPipelineFromSet(set, 3, zap.NewNop())
	require.NoError(t, err)

	n := &recordingNotifier{}
	svc := NewStatusService(pipeline, set.Labels,
		repository.NewStatusRepository(db, repository.DriverSQLite, nil, zap.NewNop()),
		sentiment.NewRecommender(nil), n, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 7, 14, 21, 30, 0, 0, time.Local) }

	return &fixture{svc: svc, notifier: n, set: set}
}

func TestEndToEnd_ClassifyRecordList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	raw := "I feel great about today"
	result, err := f.svc.Classify(ctx, "u1", raw)
	require.NoError(t, err)

	vec, err := f.set.Vectorizer.Encode("i feel great about today")
	require.NoError(t, err)
	_, probs, err := f.set.Classifier.Predict(vec)
	require.NoError(t, err)
	assert.Equal(t, sentiment.Confidence(probs), result.Confidence)

	_, err = f.svc.RecordResult(ctx, "u1", raw, result.Label, result.Confidence)
	require.NoError(t, err)

	history, err := f.svc.ListHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, raw, history[0].Text)
	assert.Equal(t, result.Label, history[0].Label)
	assert.Equal(t, result.Confidence, history[0].Confidence)
	assert.Equal(t, "2024-07-14", history[0].Date.String())
}

func TestClassify_TooShortPersistsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Analyze(ctx, "u1", "too short")
	assert.ErrorIs(t, err, sentiment.ErrTooShort)

	history, err := f.svc.ListHistory(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, f.notifier.entries)
}

func TestRecordResult_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.RecordResult(ctx, "u1", "a fine status", "HAPPY", 50)
	assert.ErrorIs(t, err, ErrInvalidLabel)

	_, err = f.svc.RecordResult(ctx, "u1", "a fine status", "POSITIVE", 100.5)
	assert.ErrorIs(t, err, ErrInvalidConfidence)

	_, err = f.svc.RecordResult(ctx, "u1", "a fine status", "POSITIVE", -1)
	assert.ErrorIs(t, err, ErrInvalidConfidence)

	_, err = f.svc.RecordResult(ctx, " ", "a fine status", "POSITIVE", 10)
	assert.ErrorIs(t, err, ErrEmptyUser)

	entry, err := f.svc.RecordResult(ctx, "u1", "a fine status", "positive", 100)
	require.NoError(t, err)
	assert.Equal(t, "POSITIVE", entry.Label)
	require.Len(t, f.notifier.entries, 1)
	assert.Equal(t, entry.ID, f.notifier.entries[0].ID)
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.Analyze(ctx, "u1", "so sad today honestly")
	require.NoError(t, err)
	assert.Equal(t, "NEGATIVE", res.Entry.Label)
	assert.NotEmpty(t, res.Recommendations)
	assert.Equal(t, sentiment.NewRecommender(nil).For("NEGATIVE"), res.Recommendations)
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Analyze(ctx, "a", "great great great day")
	require.NoError(t, err)
	_, err = f.svc.Analyze(ctx, "b", "great great great day")
	require.NoError(t, err)

	deleted, err := f.svc.ClearHistory(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = f.svc.ClearHistory(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	b, err := f.svc.ListHistory(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, b, 1)
}

func TestImportTexts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	report, err := f.svc.ImportTexts(ctx, "vk:1", []string{
		"I feel great about today",
		"",
		"short one",
		"so sad today again",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ImportReport{UserID: "vk:1", Fetched: 4, Recorded: 2, Rejected: 1, Empty: 1}, report)

	history, err := f.svc.ListHistory(ctx, "vk:1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "so sad today again", history[0].Text)
}

type failingClassifier struct{}

func (failingClassifier) Classify(string, string) (models.Classification, error) {
	return models.Classification{}, fmt.Errorf("failed to decode class 9: %w", artifact.ErrUnknownClassIndex)
}

func TestImportTexts_StopsOnFailure(t *testing.T) {
	f := newFixture(t)
	f.svc.classifier = failingClassifier{}

	report, err := f.svc.ImportTexts(context.Background(), "vk:1", []string{"one two three", "four five six"})
	assert.True(t, errors.Is(err, artifact.ErrUnknownClassIndex))
	assert.Zero(t, report.Recorded)
}

type stubWall struct {
	posts []vk.Post
	err   error
}

func (s stubWall) WallPosts(context.Context, int64, int) ([]vk.Post, error) {
	return s.posts, s.err
}

func TestFeedService_ImportWall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	feed := NewFeedService(f.svc, 10, zap.NewNop())
	grant := vk.Grant{AccessToken: "t", UserID: 7}

	report, err := feed.ImportWall(ctx, grant, stubWall{posts: []vk.Post{
		{ID: 3, Text: "newest post feel great today"},
		{ID: 2, Text: "hi"},
		{ID: 1, Text: "oldest post so sad today"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "vk:7", report.UserID)
	assert.Equal(t, 2, report.Recorded)
	assert.Equal(t, 1, report.Rejected)

	history, err := f.svc.ListHistory(ctx, "vk:7")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "newest post feel great today", history[0].Text)

	_, err = feed.ImportWall(ctx, grant, stubWall{err: errors.New("boom")})
	assert.ErrorIs(t, err, ErrFeedUnavailable)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, text := range []string{"great great day today", "so sad today honestly", "feel great today friends"} {
		_, err := f.svc.Analyze(ctx, "u", text)
		require.NoError(t, err)
	}

	summary, err := f.svc.Summary(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	require.Len(t, summary.Daily, len(summary.ByLabel))
	assert.Equal(t, "2024-07-14", summary.Daily[0].Date.String())
}
