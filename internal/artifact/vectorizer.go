package artifact

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const defaultTokenPattern = `(?u)\b\w\w+\b`

// VectorizerFile is the exported form of a fitted TF-IDF vectorizer.
type VectorizerFile struct {
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Lowercase    *bool          `json:"lowercase,omitempty"`
	TokenPattern string         `json:"token_pattern,omitempty"`
	NgramRange   [2]int         `json:"ngram_range,omitempty"`
	SublinearTF  bool           `json:"sublinear_tf,omitempty"`
	Norm         string         `json:"norm,omitempty"`
	StopWords    []string       `json:"stop_words,omitempty"`
}

// Vectorizer turns normalized text into a TF-IDF feature vector. The
// vocabulary is frozen once built; Encode never refits.
type Vectorizer struct {
	vocabulary  map[string]int
	idf         []float64
	lowercase   bool
	token       *regexp.Regexp
	minN, maxN  int
	sublinearTF bool
	norm        string
	stopWords   map[string]struct{}
}

// NewVectorizer validates an exported vectorizer and compiles its tokenizer.
func NewVectorizer(f VectorizerFile) (*Vectorizer, error) {
	if len(f.IDF) == 0 {
		return nil, fmt.Errorf("%w: vectorizer has empty idf", ErrNotLoaded)
	}
	for term, col := range f.Vocabulary {
		if col < 0 || col >= len(f.IDF) {
			return nil, fmt.Errorf("%w: vocabulary term %q maps to column %d outside [0,%d)", ErrNotLoaded, term, col, len(f.IDF))
		}
	}

	pattern := f.TokenPattern
	if pattern == "" {
		pattern = defaultTokenPattern
	}
	// RE2 has no (?u) flag; \w there is ASCII, which matches normalized input.
	pattern = strings.ReplaceAll(pattern, "(?u)", "")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: token pattern %q: %w", ErrNotLoaded, f.TokenPattern, err)
	}

	minN, maxN := f.NgramRange[0], f.NgramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("%w: invalid ngram_range [%d,%d]", ErrNotLoaded, minN, maxN)
	}

	norm := strings.ToLower(f.Norm)
	switch norm {
	case "l1", "l2", "", "none":
	default:
		return nil, fmt.Errorf("%w: unsupported norm %q", ErrNotLoaded, f.Norm)
	}

	lowercase := true
	if f.Lowercase != nil {
		lowercase = *f.Lowercase
	}

	var stop map[string]struct{}
	if len(f.StopWords) > 0 {
		stop = make(map[string]struct{}, len(f.StopWords))
		for _, w := range f.StopWords {
			stop[w] = struct{}{}
		}
	}

	return &Vectorizer{
		vocabulary:  f.Vocabulary,
		idf:         f.IDF,
		lowercase:   lowercase,
		token:       re,
		minN:        minN,
		maxN:        maxN,
		sublinearTF: f.SublinearTF,
		norm:        norm,
		stopWords:   stop,
	}, nil
}

// Dim is the fixed output dimensionality.
func (v *Vectorizer) Dim() int {
	if v == nil {
		return 0
	}
	return len(v.idf)
}

// Encode maps text to its TF-IDF vector. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Encode(text string) (*mat.VecDense, error) {
	if v == nil || len(v.idf) == 0 {
		return nil, fmt.Errorf("%w: vectorizer", ErrNotLoaded)
	}

	counts := make(map[int]float64)
	for _, term := range v.terms(text) {
		if col, ok := v.vocabulary[term]; ok {
			counts[col]++
		}
	}

	vec := mat.NewVecDense(len(v.idf), nil)
	for col, tf := range counts {
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		vec.SetVec(col, tf*v.idf[col])
	}

	switch v.norm {
	case "l2":
		if n := mat.Norm(vec, 2); n > 0 {
			vec.ScaleVec(1/n, vec)
		}
	case "l1":
		if n := mat.Norm(vec, 1); n > 0 {
			vec.ScaleVec(1/n, vec)
		}
	}

	return vec, nil
}

func (v *Vectorizer) terms(text string) []string {
	if v.lowercase {
		text = strings.ToLower(text)
	}
	tokens := v.token.FindAllString(text, -1)
	if v.stopWords != nil {
		kept := tokens[:0]
		for _, tok := range tokens {
			if _, drop := v.stopWords[tok]; !drop {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	if v.minN == 1 && v.maxN == 1 {
		return tokens
	}

	var terms []string
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
