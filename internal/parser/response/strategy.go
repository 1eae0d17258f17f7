package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var (
	errNoSpan     = errors.New("no candidate span")
	errNotRecords = errors.New("parsed value is not a list of objects")
	errEmptyList  = errors.New("parsed list is empty")
)

// SpanError reports a candidate span that was found but could not be parsed
type SpanError struct {
	Span string
	Err  error
}

func (e *SpanError) Error() string {
	return e.Err.Error()
}

func (e *SpanError) Unwrap() error {
	return e.Err
}

// Strategy locates one JSON-like construct in raw text and parses it into
// candidate record objects.
type Strategy interface {
	// Name identifies the strategy in logs
	Name() string

	// Extract returns the record objects found, or an error when the
	// strategy does not apply or its span fails to parse
	Extract(text string) ([]json.RawMessage, error)
}

// DefaultStrategies returns the salvage chain in the order it is tried
func DefaultStrategies() []Strategy {
	return []Strategy{
		listStrategy{},
		objectStrategy{},
		concatenatedStrategy{},
	}
}

// listStrategy parses the span from the first top-level '[' to the last ']'
type listStrategy struct{}

func (listStrategy) Name() string { return "list" }

func (listStrategy) Extract(text string) ([]json.RawMessage, error) {
	span, ok := ListSpan(text)
	if !ok {
		return nil, errNoSpan
	}
	return parseCandidate(span, span)
}

// objectStrategy parses the span from the first '{' to the last '}'
type objectStrategy struct{}

func (objectStrategy) Name() string { return "object" }

func (objectStrategy) Extract(text string) ([]json.RawMessage, error) {
	span, ok := ObjectSpan(text)
	if !ok {
		return nil, errNoSpan
	}
	return parseCandidate(span, span)
}

// concatenatedStrategy treats the object span as several objects emitted
// without an enclosing array: it joins them and wraps the span in [...]
type concatenatedStrategy struct{}

func (concatenatedStrategy) Name() string { return "concatenated" }

func (concatenatedStrategy) Extract(text string) ([]json.RawMessage, error) {
	span, ok := ObjectSpan(text)
	if !ok {
		return nil, errNoSpan
	}
	return parseCandidate(span, "["+joinAdjacentObjects(span)+"]")
}

// ListSpan returns the greedy span from the first '[' outside any {...}
// block to the last ']'. Arrays nested in an object (such as "items") are
// not list candidates.
func ListSpan(text string) (string, bool) {
	start := topLevelIndex(text, '[')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, ']')
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}

// ObjectSpan returns the greedy span from the first '{' to the last '}'
func ObjectSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}

// parseCandidate parses candidate, reporting failures against span, the
// fragment of the input it was derived from
func parseCandidate(span, candidate string) ([]json.RawMessage, error) {
	elems, err := parseSpan(candidate)
	if err != nil {
		return nil, &SpanError{Span: span, Err: err}
	}
	return elems, nil
}

// parseSpan sanitises span and decodes it as a single object or a list of objects
func parseSpan(span string) ([]json.RawMessage, error) {
	clean := []byte(StripThousandsSeparators(span))

	var value json.RawMessage
	if err := json.Unmarshal(clean, &value); err != nil {
		return nil, err
	}
	value = bytes.TrimSpace(value)

	var elems []json.RawMessage
	switch value[0] {
	case '{':
		elems = []json.RawMessage{value}
	case '[':
		if err := json.Unmarshal(value, &elems); err != nil {
			return nil, err
		}
	default:
		return nil, errNotRecords
	}

	if len(elems) == 0 {
		return nil, errEmptyList
	}
	for _, e := range elems {
		e = bytes.TrimSpace(e)
		if len(e) == 0 || e[0] != '{' {
			return nil, errNotRecords
		}
	}
	return elems, nil
}
