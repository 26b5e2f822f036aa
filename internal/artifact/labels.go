package artifact

import (
	"fmt"
	"strings"
)

// LabelFile is the exported form of a fitted label encoder.
type LabelFile struct {
	Classes []string `json:"classes"`
}

// Labels maps encoded class indices to sentiment names and back.
type Labels struct {
	names []string
	index map[string]int
}

func NewLabels(f LabelFile) (*Labels, error) {
	if len(f.Classes) == 0 {
		return nil, fmt.Errorf("%w: label encoder has no classes", ErrNotLoaded)
	}
	l := &Labels{
		names: make([]string, len(f.Classes)),
		index: make(map[string]int, len(f.Classes)),
	}
	for i, name := range f.Classes {
		upper := strings.ToUpper(strings.TrimSpace(name))
		if upper == "" {
			return nil, fmt.Errorf("%w: label %d is empty", ErrNotLoaded, i)
		}
		if _, dup := l.index[upper]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrNotLoaded, upper)
		}
		l.names[i] = upper
		l.index[upper] = i
	}
	return l, nil
}

// Decode returns the upper-cased label for a class index.
func (l *Labels) Decode(classIndex int) (string, error) {
	if l == nil || len(l.names) == 0 {
		return "", fmt.Errorf("%w: label encoder", ErrNotLoaded)
	}
	if classIndex < 0 || classIndex >= len(l.names) {
		return "", fmt.Errorf("%w: %d not in [0,%d)", ErrUnknownClassIndex, classIndex, len(l.names))
	}
	return l.names[classIndex], nil
}

// Encode is the inverse of Decode; matching is case-insensitive.
func (l *Labels) Encode(label string) (int, error) {
	if l == nil || len(l.names) == 0 {
		return 0, fmt.Errorf("%w: label encoder", ErrNotLoaded)
	}
	i, ok := l.index[strings.ToUpper(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return i, nil
}

// Names lists the fitted label set in class order.
func (l *Labels) Names() []string {
	return append([]string(nil), l.names...)
}

// Contains reports whether label belongs to the fitted set.
func (l *Labels) Contains(label string) bool {
	_, err := l.Encode(label)
	return err == nil
}
