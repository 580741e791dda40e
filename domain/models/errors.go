package models

import (
	"errors"
	"fmt"
	"strings"
)

type IngestionErrorKind int

const (
	SourceUnavailable IngestionErrorKind = iota + 1
	NoTabularFileFound
	EmptyResult
)

func (k IngestionErrorKind) String() string {
	switch k {
	case SourceUnavailable:
		return "source unavailable"
	case NoTabularFileFound:
		return "no tabular file found"
	case EmptyResult:
		return "empty result"
	default:
		return fmt.Sprintf("ingestion error %d", int(k))
	}
}

// IngestionError is returned when a source cannot produce CSV bytes.
type IngestionError struct {
	Kind   IngestionErrorKind
	Source string
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Kind)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

type ParseErrorKind int

const (
	Unparseable ParseErrorKind = iota + 1
)

func (k ParseErrorKind) String() string {
	if k == Unparseable {
		return "unparseable"
	}
	return fmt.Sprintf("parse error %d", int(k))
}

// ParseError is returned when no decode strategy yields a single row.
type ParseError struct {
	Kind     ParseErrorKind
	Attempts []string
}

func (e *ParseError) Error() string {
	if len(e.Attempts) == 0 {
		return "csv " + e.Kind.String()
	}
	return fmt.Sprintf("csv %s (%s)", e.Kind, strings.Join(e.Attempts, "; "))
}

// IngestionKind reports the kind of an IngestionError anywhere in err's chain.
func IngestionKind(err error) (IngestionErrorKind, bool) {
	var ie *IngestionError
	if errors.As(err, &ie) {
		return ie.Kind, true
	}
	return 0, false
}
