package artifact

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ClassifierFile is the exported form of a fitted logistic regression.
// Binary models carry a single coefficient row.
type ClassifierFile struct {
	Coef       [][]float64 `json:"coef"`
	Intercept  []float64   `json:"intercept"`
	Classes    []int       `json:"classes"`
	MultiClass string      `json:"multi_class,omitempty"` // "multinomial" or "ovr"
}

// Classifier maps a feature vector to a class and a probability distribution.
type Classifier struct {
	coef        *mat.Dense
	intercept   *mat.VecDense
	classes     []int
	multinomial bool
}

// NewClassifier validates the exported coefficients.
func NewClassifier(f ClassifierFile) (*Classifier, error) {
	rows := len(f.Coef)
	if rows == 0 {
		return nil, fmt.Errorf("%w: classifier has no coefficients", ErrNotLoaded)
	}
	cols := len(f.Coef[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: classifier has empty coefficient rows", ErrNotLoaded)
	}
	if len(f.Intercept) != rows {
		return nil, fmt.Errorf("%w: %d intercepts for %d coefficient rows", ErrNotLoaded, len(f.Intercept), rows)
	}

	switch {
	case rows == 1 && len(f.Classes) != 2:
		return nil, fmt.Errorf("%w: binary classifier needs 2 classes, got %d", ErrNotLoaded, len(f.Classes))
	case rows > 1 && len(f.Classes) != rows:
		return nil, fmt.Errorf("%w: %d classes for %d coefficient rows", ErrNotLoaded, len(f.Classes), rows)
	}

	data := make([]float64, 0, rows*cols)
	for i, row := range f.Coef {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: coefficient row %d has %d columns, want %d", ErrNotLoaded, i, len(row), cols)
		}
		data = append(data, row...)
	}

	var multinomial bool
	switch strings.ToLower(f.MultiClass) {
	case "", "multinomial", "auto":
		multinomial = true
	case "ovr":
	default:
		return nil, fmt.Errorf("%w: unsupported multi_class %q", ErrNotLoaded, f.MultiClass)
	}

	return &Classifier{
		coef:        mat.NewDense(rows, cols, data),
		intercept:   mat.NewVecDense(rows, append([]float64(nil), f.Intercept...)),
		classes:     append([]int(nil), f.Classes...),
		multinomial: multinomial,
	}, nil
}

// Dim is the expected input dimensionality.
func (c *Classifier) Dim() int {
	if c == nil {
		return 0
	}
	_, cols := c.coef.Dims()
	return cols
}

// Classes returns the encoded class of each probability slot.
func (c *Classifier) Classes() []int {
	return append([]int(nil), c.classes...)
}

// Predict returns the encoded class of the most probable slot and the full
// distribution. Ties resolve to the lowest slot.
func (c *Classifier) Predict(x *mat.VecDense) (int, []float64, error) {
	if c == nil || c.coef == nil {
		return 0, nil, fmt.Errorf("%w: classifier", ErrNotLoaded)
	}
	if x.Len() != c.Dim() {
		return 0, nil, fmt.Errorf("%w: feature vector has %d dimensions, classifier expects %d", ErrNotLoaded, x.Len(), c.Dim())
	}

	rows, _ := c.coef.Dims()
	z := mat.NewVecDense(rows, nil)
	z.MulVec(c.coef, x)
	z.AddVec(z, c.intercept)

	probs := c.probabilities(z.RawVector().Data)

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return c.classes[best], probs, nil
}

func (c *Classifier) probabilities(z []float64) []float64 {
	if len(z) == 1 {
		if c.multinomial {
			return softmax([]float64{-z[0], z[0]})
		}
		p := sigmoid(z[0])
		return []float64{1 - p, p}
	}
	if c.multinomial {
		return softmax(z)
	}

	probs := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		probs[i] = sigmoid(v)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func softmax(z []float64) []float64 {
	maxZ := z[0]
	for _, v := range z[1:] {
		maxZ = math.Max(maxZ, v)
	}
	out := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
