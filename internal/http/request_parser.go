// Package http serves the question form, the JSON answer API and the
// operational endpoints.
//
// This file holds the helpers that pull a question out of a request.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MaxQuestionLength caps the question in runes.
	MaxQuestionLength = 500

	maxBodyBytes = 16 << 10
)

var ErrQuestionTooLong = fmt.Errorf("question longer than %d characters", MaxQuestionLength)

// RequestBodyParser reads a body once and exposes it as JSON or form values.
// HTMX posts forms, API clients usually post JSON.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if p.err == nil && len(p.body) > maxBodyBytes {
			p.err = errors.New("request body too large")
		}
	}
	return p
}

// Parse decodes the body as JSON when it looks like an object, as a form
// otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("decode json body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a sanitized value from the parsed body.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseQuestion extracts the question from "q" in the query string or from
// "question" (or "q") in a POST body. An empty question is not an error.
func ParseQuestion(r *http.Request) (string, error) {
	var question string
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		question = sanitizeInput(r.URL.Query().Get("q"))
	} else {
		p := NewRequestBodyParser(r)
		if err := p.Parse(); err != nil {
			return "", err
		}
		question = p.Get("question")
		if question == "" {
			question = p.Get("q")
		}
	}

	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return "", ErrQuestionTooLong
	}
	return question, nil
}

// sanitizeInput drops control characters except tab and newlines, then trims.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// RequireMethod returns a 405 response when r.Method is not one of methods.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}
