package artifact

import (
	"encoding/json"
	"fmt"
	"os"
)

// Paths locates the three exported artifacts.
type Paths struct {
	Vectorizer   string
	Classifier   string
	LabelEncoder string
}

// Set is the immutable trio shared by every request for the process lifetime.
type Set struct {
	Vectorizer *Vectorizer
	Classifier *Classifier
	Labels     *Labels
}

// Load reads and cross-checks all three artifacts. Any failure wraps ErrNotLoaded.
func Load(p Paths) (*Set, error) {
	var vf VectorizerFile
	if err := readJSON(p.Vectorizer, &vf); err != nil {
		return nil, fmt.Errorf("%w: vectorizer: %w", ErrNotLoaded, err)
	}
	vectorizer, err := NewVectorizer(vf)
	if err != nil {
		return nil, err
	}

	var cf ClassifierFile
	if err := readJSON(p.Classifier, &cf); err != nil {
		return nil, fmt.Errorf("%w: classifier: %w", ErrNotLoaded, err)
	}
	classifier, err := NewClassifier(cf)
	if err != nil {
		return nil, err
	}

	var lf LabelFile
	if err := readJSON(p.LabelEncoder, &lf); err != nil {
		return nil, fmt.Errorf("%w: label encoder: %w", ErrNotLoaded, err)
	}
	labels, err := NewLabels(lf)
	if err != nil {
		return nil, err
	}

	if classifier.Dim() != vectorizer.Dim() {
		return nil, fmt.Errorf("%w: classifier expects %d features, vectorizer yields %d", ErrNotLoaded, classifier.Dim(), vectorizer.Dim())
	}
	if n, m := len(classifier.Classes()), len(labels.Names()); n != m {
		return nil, fmt.Errorf("%w: classifier has %d classes, label encoder %d", ErrNotLoaded, n, m)
	}
	for _, class := range classifier.Classes() {
		if _, err := labels.Decode(class); err != nil {
			return nil, fmt.Errorf("%w: classifier class %d has no label: %w", ErrNotLoaded, class, err)
		}
	}

	return &Set{Vectorizer: vectorizer, Classifier: classifier, Labels: labels}, nil
}

func readJSON(path string, v any) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
