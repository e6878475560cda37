package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized is wrapped by every 401 APIError
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is wrapped by every 404 APIError
	ErrNotFound = errors.New("not found")
	// ErrConflict is wrapped by every 409 APIError
	ErrConflict = errors.New("conflict")
)

// APIError is a non-2xx response from the upstream API
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Detail is the server-supplied message, if any
	Detail string
	Body   []byte
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Unwrap maps well-known statuses to sentinel errors
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	return nil
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseDetail extracts the human message from an error body. FastAPI
// returns either {"detail": "..."} or {"detail": [{"loc": [...], "msg": "..."}]}.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	if len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			return text
		}

		var issues []validationIssue
		if err := json.Unmarshal(envelope.Detail, &issues); err == nil && len(issues) > 0 {
			parts := make([]string, 0, len(issues))
			for _, issue := range issues {
				parts = append(parts, formatIssue(issue))
			}
			return strings.Join(parts, "; ")
		}
	}

	return envelope.Message
}

func formatIssue(issue validationIssue) string {
	var loc []string
	for _, part := range issue.Loc {
		s := fmt.Sprint(part)
		if s == "body" {
			continue
		}
		loc = append(loc, s)
	}
	if len(loc) == 0 {
		return issue.Msg
	}
	return strings.Join(loc, ".") + ": " + issue.Msg
}
