package sentiment

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"status-sentiment/internal/artifact"
	"status-sentiment/internal/models"
)

// ErrTooShort rejects input below the minimum word count. It is a
// validation outcome, not a failure.
var ErrTooShort = errors.New("status is too short")

// Rejection carries why an input was refused before inference.
type Rejection struct {
	MinWords int
	Words    int
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %d words, at least %d required", ErrTooShort, r.Words, r.MinWords)
}

func (r *Rejection) Unwrap() error { return ErrTooShort }

// Encoder turns normalized text into a feature vector.
type Encoder interface {
	Encode(text string) (*mat.VecDense, error)
}

// Predictor maps a feature vector to an encoded class and its distribution.
type Predictor interface {
	Predict(x *mat.VecDense) (int, []float64, error)
}

// LabelDecoder maps an encoded class to its display label.
type LabelDecoder interface {
	Decode(classIndex int) (string, error)
}

// Pipeline classifies raw status text. It holds only read-only artifacts
// and is safe for concurrent use.
type Pipeline struct {
	encoder   Encoder
	predictor Predictor
	decoder   LabelDecoder
	minWords  int
	logger    *zap.Logger
}

// NewPipeline wires the three artifact adapters. A nil adapter is reported
// as artifact.ErrNotLoaded.
func NewPipeline(encoder Encoder, predictor Predictor, decoder LabelDecoder, minWords int, logger *zap.Logger) (*Pipeline, error) {
	switch {
	case encoder == nil:
		return nil, fmt.Errorf("%w: vectorizer", artifact.ErrNotLoaded)
	case predictor == nil:
		return nil, fmt.Errorf("%w: classifier", artifact.ErrNotLoaded)
	case decoder == nil:
		return nil, fmt.Errorf("%w: label encoder", artifact.ErrNotLoaded)
	}
	if minWords < 1 {
		minWords = DefaultMinWords
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		encoder:   encoder,
		predictor: predictor,
		decoder:   decoder,
		minWords:  minWords,
		logger:    logger,
	}, nil
}

// NewPipelineFromSet builds a pipeline over a loaded artifact set.
func NewPipelineFromSet(set *artifact.Set, minWords int, logger *zap.Logger) (*Pipeline, error) {
	if set == nil {
		return nil, fmt.Errorf("%w: artifact set", artifact.ErrNotLoaded)
	}
	return NewPipeline(set.Vectorizer, set.Classifier, set.Labels, minWords, logger)
}

// MinWords is the configured gate threshold.
func (p *Pipeline) MinWords() int {
	return p.minWords
}

// Classify gates, normalizes, encodes, predicts and decodes. Rejected input
// returns a *Rejection matching ErrTooShort and never reaches the model.
func (p *Pipeline) Classify(userID, raw string) (models.Classification, error) {
	if !IsAcceptable(raw, p.minWords) {
		p.logger.Debug("Status rejected by word gate",
			zap.String("user_id", userID),
			zap.Int("min_words", p.minWords))
		return models.Classification{}, &Rejection{MinWords: p.minWords, Words: WordCount(raw)}
	}

	vec, err := p.encoder.Encode(Normalize(raw))
	if err != nil {
		return models.Classification{}, fmt.Errorf("failed to encode status: %w", err)
	}

	classIndex, probs, err := p.predictor.Predict(vec)
	if err != nil {
		return models.Classification{}, fmt.Errorf("failed to predict sentiment: %w", err)
	}

	label, err := p.decoder.Decode(classIndex)
	if err != nil {
		return models.Classification{}, fmt.Errorf("failed to decode class %d: %w", classIndex, err)
	}

	return models.Classification{Label: label, Confidence: Confidence(probs)}, nil
}

// Confidence is max(probs) as a percentage rounded to two decimals, kept in [0,100].
func Confidence(probs []float64) float64 {
	if len(probs) == 0 {
		return 0
	}
	best := probs[0]
	for _, p := range probs[1:] {
		if p > best {
			best = p
		}
	}
	pct := math.Round(best*100*100) / 100
	return math.Min(100, math.Max(0, pct))
}
