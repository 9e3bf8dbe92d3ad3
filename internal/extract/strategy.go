// Package extract implements the cascade that turns PDF bytes into text by
// trying the embedded text layer first and falling back to OCR.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Method labels which strategy produced a result
type Method string

const (
	MethodTextLayer   Method = "Text-based"
	MethodFastOCR     Method = "OCR - Fast"
	MethodAccurateOCR Method = "OCR - High Accuracy"
)

var (
	ErrEmptyDocument = errors.New("document is empty")
	ErrNoPages       = errors.New("document has no pages")
)

// Output is what a single strategy produced
type Output struct {
	// Text is the assembled document text, including any page markers
	Text string
	// Pages holds the recognized text of each page, without markers
	Pages []string
}

// ContentLength returns the number of characters of stripped recognized
// text. Page markers added by OCR strategies are not counted.
func (o *Output) ContentLength() int {
	if o == nil {
		return 0
	}
	if len(o.Pages) == 0 {
		return utf8.RuneCountInString(strings.TrimSpace(o.Text))
	}
	n := 0
	for _, p := range o.Pages {
		n += utf8.RuneCountInString(strings.TrimSpace(p))
	}
	return n
}

// Strategy is one way of getting text out of a PDF
type Strategy interface {
	Method() Method
	Extract(ctx context.Context, pdf []byte) (*Output, error)
}

// StrategyError records which strategy aborted the cascade
type StrategyError struct {
	Method Method
	Err    error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Method, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}
