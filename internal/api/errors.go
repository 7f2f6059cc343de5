package api

import (
	"net/http"
	"strconv"
	"strings"
)

// RequestError is returned when the resource answers outside the 2xx range
// or cannot be reached. Error() is the HTTP status text alone, which is what
// the UI shows.
type RequestError struct {
	StatusCode int    // 0 when no response was received
	StatusText string // reason phrase, e.g. "Not Found"
	Method     string
	URL        string
	Err        error // transport failure, nil for status errors
}

func (e *RequestError) Error() string {
	return e.StatusText
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// statusText extracts the reason phrase from resp.Status ("404 Not Found"),
// falling back to the canonical text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func newStatusError(req *http.Request, resp *http.Response) *RequestError {
	return &RequestError{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Method:     req.Method,
		URL:        req.URL.String(),
	}
}

func newTransportError(req *http.Request, err error) *RequestError {
	return &RequestError{
		StatusText: err.Error(),
		Method:     req.Method,
		URL:        req.URL.String(),
		Err:        err,
	}
}
