package artifact

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testVectorizerFile() VectorizerFile {
	return VectorizerFile{
		Vocabulary: map[string]int{"good": 0, "bad": 1, "day": 2},
		IDF:        []float64{1, 1, 1},
		Norm:       "l2",
	}
}

func testClassifierFile() ClassifierFile {
	return ClassifierFile{
		Coef: [][]float64{
			{0, 3, 0},
			{0, 0, 1},
			{3, 0, 0},
		},
		Intercept:  []float64{0, 0, 0},
		Classes:    []int{0, 1, 2},
		MultiClass: "multinomial",
	}
}

func testLabelFile() LabelFile {
	return LabelFile{Classes: []string{"negatif", "netral", "positif"}}
}

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestVectorizer_Encode(t *testing.T) {
	v, err := NewVectorizer(testVectorizerFile())
	require.NoError(t, err)

	vec, err := v.Encode("good day a")
	require.NoError(t, err)
	assert.Equal(t, 3, vec.Len())
	assert.InDelta(t, 1/math.Sqrt2, vec.AtVec(0), 1e-9)
	assert.Zero(t, vec.AtVec(1))
	assert.InDelta(t, 1/math.Sqrt2, vec.AtVec(2), 1e-9)
	assert.InDelta(t, 1.0, mat.Norm(vec, 2), 1e-9)

	unknown, err := v.Encode("nothing known here")
	require.NoError(t, err)
	assert.Zero(t, mat.Norm(unknown, 2))
}

func TestVectorizer_NgramsAndSublinear(t *testing.T) {
	f := VectorizerFile{
		Vocabulary:  map[string]int{"good": 0, "good day": 1},
		IDF:         []float64{2, 3},
		NgramRange:  [2]int{1, 2},
		SublinearTF: true,
		Norm:        "none",
	}
	v, err := NewVectorizer(f)
	require.NoError(t, err)

	vec, err := v.Encode("good good good day")
	require.NoError(t, err)
	assert.InDelta(t, 2*(1+math.Log(3)), vec.AtVec(0), 1e-9)
	assert.InDelta(t, 3.0, vec.AtVec(1), 1e-9)
}

func TestVectorizer_StopWords(t *testing.T) {
	f := testVectorizerFile()
	f.StopWords = []string{"good"}
	v, err := NewVectorizer(f)
	require.NoError(t, err)

	vec, err := v.Encode("good day")
	require.NoError(t, err)
	assert.Zero(t, vec.AtVec(0))
	assert.InDelta(t, 1.0, vec.AtVec(2), 1e-9)
}

func TestVectorizer_Invalid(t *testing.T) {
	tests := []struct {
		name string
		f    VectorizerFile
	}{
		{name: "empty idf", f: VectorizerFile{}},
		{name: "column out of range", f: VectorizerFile{Vocabulary: map[string]int{"x": 4}, IDF: []float64{1}}},
		{name: "bad pattern", f: VectorizerFile{IDF: []float64{1}, TokenPattern: "("}},
		{name: "bad ngram", f: VectorizerFile{IDF: []float64{1}, NgramRange: [2]int{2, 1}}},
		{name: "bad norm", f: VectorizerFile{IDF: []float64{1}, Norm: "max"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVectorizer(tt.f)
			assert.ErrorIs(t, err, ErrNotLoaded)
		})
	}
}

func TestNilAdaptersReportNotLoaded(t *testing.T) {
	var v *Vectorizer
	_, err := v.Encode("hello")
	assert.ErrorIs(t, err, ErrNotLoaded)

	var c *Classifier
	_, _, err = c.Predict(mat.NewVecDense(1, nil))
	assert.ErrorIs(t, err, ErrNotLoaded)

	var l *Labels
	_, err = l.Decode(0)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestClassifier_Multinomial(t *testing.T) {
	c, err := NewClassifier(testClassifierFile())
	require.NoError(t, err)

	x := mat.NewVecDense(3, []float64{1 / math.Sqrt2, 0, 1 / math.Sqrt2})
	class, probs, err := c.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, 2, class)
	require.Len(t, probs, 3)

	var sum float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	z := []float64{0, 1 / math.Sqrt2, 3 / math.Sqrt2}
	denom := math.Exp(z[0]) + math.Exp(z[1]) + math.Exp(z[2])
	assert.InDelta(t, math.Exp(z[2])/denom, probs[2], 1e-12)
}

func TestClassifier_TieGoesToLowestIndex(t *testing.T) {
	c, err := NewClassifier(testClassifierFile())
	require.NoError(t, err)

	class, probs, err := c.Predict(mat.NewVecDense(3, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, class)
	assert.InDelta(t, probs[0], probs[2], 1e-15)
}

func TestClassifier_Binary(t *testing.T) {
	f := ClassifierFile{
		Coef:       [][]float64{{2, 0, 0}},
		Intercept:  []float64{0},
		Classes:    []int{0, 1},
		MultiClass: "ovr",
	}
	c, err := NewClassifier(f)
	require.NoError(t, err)

	class, probs, err := c.Predict(mat.NewVecDense(3, []float64{1, 0, 0}))
	require.NoError(t, err)
	assert.Equal(t, 1, class)
	assert.InDelta(t, 1/(1+math.Exp(-2)), probs[1], 1e-12)
	assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-12)

	f.MultiClass = "multinomial"
	c, err = NewClassifier(f)
	require.NoError(t, err)
	_, probs, err = c.Predict(mat.NewVecDense(3, []float64{1, 0, 0}))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-4)), probs[1], 1e-12)
}

func TestClassifier_OvRNormalizes(t *testing.T) {
	f := testClassifierFile()
	f.MultiClass = "ovr"
	c, err := NewClassifier(f)
	require.NoError(t, err)

	_, probs, err := c.Predict(mat.NewVecDense(3, []float64{0, 1, 0}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probs[0]+probs[1]+probs[2], 1e-12)
	assert.Greater(t, probs[0], probs[1])
}

func TestClassifier_DimensionMismatch(t *testing.T) {
	c, err := NewClassifier(testClassifierFile())
	require.NoError(t, err)

	_, _, err = c.Predict(mat.NewVecDense(2, nil))
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLabels(t *testing.T) {
	l, err := NewLabels(testLabelFile())
	require.NoError(t, err)

	label, err := l.Decode(2)
	require.NoError(t, err)
	assert.Equal(t, "POSITIF", label)

	_, err = l.Decode(3)
	assert.ErrorIs(t, err, ErrUnknownClassIndex)
	_, err = l.Decode(-1)
	assert.ErrorIs(t, err, ErrUnknownClassIndex)

	idx, err := l.Encode("Netral")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = l.Encode("happy")
	assert.ErrorIs(t, err, ErrUnknownLabel)

	assert.Equal(t, []string{"NEGATIF", "NETRAL", "POSITIF"}, l.Names())
	assert.True(t, l.Contains("negatif"))

	_, err = NewLabels(LabelFile{Classes: []string{"a", "A"}})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Vectorizer:   writeJSON(t, dir, "tfidf_vectorizer.json", testVectorizerFile()),
		Classifier:   writeJSON(t, dir, "logistic_regression.json", testClassifierFile()),
		LabelEncoder: writeJSON(t, dir, "label_encoder.json", testLabelFile()),
	}

	set, err := Load(paths)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Vectorizer.Dim())
	assert.Equal(t, 3, set.Classifier.Dim())
	assert.Len(t, set.Labels.Names(), 3)
}

func TestLoad_Failures(t *testing.T) {
	dir := t.TempDir()
	good := Paths{
		Vectorizer:   writeJSON(t, dir, "v.json", testVectorizerFile()),
		Classifier:   writeJSON(t, dir, "c.json", testClassifierFile()),
		LabelEncoder: writeJSON(t, dir, "l.json", testLabelFile()),
	}

	wide := testClassifierFile()
	wide.Coef = [][]float64{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{not json"), 0o644))

	tests := []struct {
		name   string
		mutate func(p *Paths)
	}{
		{name: "missing vectorizer", mutate: func(p *Paths) { p.Vectorizer = filepath.Join(dir, "absent.json") }},
		{name: "empty classifier path", mutate: func(p *Paths) { p.Classifier = "" }},
		{name: "corrupt label encoder", mutate: func(p *Paths) { p.LabelEncoder = garbage }},
		{name: "dimension mismatch", mutate: func(p *Paths) { p.Classifier = writeJSON(t, dir, "wide.json", wide) }},
		{name: "label count mismatch", mutate: func(p *Paths) {
			p.LabelEncoder = writeJSON(t, dir, "two.json", LabelFile{Classes: []string{"neg", "pos"}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := good
			tt.mutate(&p)
			_, err := Load(p)
			assert.ErrorIs(t, err, ErrNotLoaded)
		})
	}
}
