package ai

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why the AI stage of a classification failed.
type ErrorKind string

const (
	KindConfig  ErrorKind = "config"
	KindCall    ErrorKind = "call"
	KindTimeout ErrorKind = "timeout"
	KindParse   ErrorKind = "parse"
	KindSchema  ErrorKind = "schema"
)

var ErrNoGenerator = errors.New("no text generator configured")

type ClassificationError struct {
	Kind ErrorKind
	Err  error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification %s error: %v", e.Kind, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

func classificationErr(kind ErrorKind, err error) *ClassificationError {
	return &ClassificationError{Kind: kind, Err: err}
}

// errorKind reports the kind of a classification failure, or "unknown".
func errorKind(err error) string {
	var cErr *ClassificationError
	if errors.As(err, &cErr) {
		return string(cErr.Kind)
	}
	return "unknown"
}
