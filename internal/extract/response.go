package extract

import (
	"errors"
	"strings"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the JSON shape returned to clients. Text is a pointer so an
// empty success text is still emitted while error responses carry none.
type Response struct {
	Status     string  `json:"status" yaml:"status"`
	MethodUsed Method  `json:"method_used,omitempty" yaml:"method_used,omitempty"`
	Text       *string `json:"text,omitempty" yaml:"text,omitempty"`
	Pages      int     `json:"pages,omitempty" yaml:"pages,omitempty"`
	DurationMs int64   `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	Message    string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// NewSuccessResponse builds the success shape from a cascade result
func NewSuccessResponse(res *Result) Response {
	text := res.Text
	return Response{
		Status:     StatusSuccess,
		MethodUsed: res.Method,
		Text:       &text,
		Pages:      res.Pages,
		DurationMs: res.Duration.Milliseconds(),
	}
}

// NewErrorResponse builds the error shape. The message is never empty.
func NewErrorResponse(err error) Response {
	msg := "unknown error"
	if err != nil {
		msg = strings.TrimSpace(err.Error())
		if msg == "" {
			msg = "unknown error"
		}
	}
	return Response{
		Status:  StatusError,
		Message: msg,
	}
}

// FailedMethod returns the strategy that aborted the cascade, if any
func FailedMethod(err error) (Method, bool) {
	var se *StrategyError
	if errors.As(err, &se) {
		return se.Method, true
	}
	return "", false
}
