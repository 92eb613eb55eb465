package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized is matched by HTTP errors with status 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is matched by HTTP errors with status 404.
	ErrNotFound = errors.New("not found")

	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("api key is required")

	// ErrUnsupportedAction is returned for actions the API has no route for.
	ErrUnsupportedAction = errors.New("unsupported action")

	// ErrGraphQL is wrapped by errors reported in a GraphQL response body.
	ErrGraphQL = errors.New("graphql error")
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is lets callers match on the status class with errors.Is.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Temporary reports whether retrying the request may succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// readHTTPError consumes and closes the response body.
func readHTTPError(resp *http.Response) *HTTPError {
	defer resp.Body.Close()

	herr := &HTTPError{StatusCode: resp.StatusCode}
	if resp.Request != nil {
		herr.Method = resp.Request.Method
		herr.Path = resp.Request.URL.Path
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return herr
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Errors) == 0 {
		herr.Message = strings.TrimSpace(string(raw))
		return herr
	}
	messages := make([]string, 0, len(body.Errors))
	for _, e := range body.Errors {
		if e.Message != "" {
			messages = append(messages, e.Message)
		}
	}
	herr.Message = strings.Join(messages, " -- ")
	return herr
}
