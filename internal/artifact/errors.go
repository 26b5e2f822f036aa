package artifact

import "errors"

var (
	// ErrNotLoaded means an inference artifact is missing, unreadable or
	// inconsistent with its siblings. It is fatal at startup.
	ErrNotLoaded = errors.New("artifact not loaded")
	// ErrUnknownClassIndex means a class index fell outside the fitted label space.
	ErrUnknownClassIndex = errors.New("unknown class index")
	// ErrUnknownLabel means a label name is not part of the fitted label space.
	ErrUnknownLabel = errors.New("unknown label")
)
