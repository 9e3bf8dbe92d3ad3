package extract

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"github.com/fluxbase-eu/pdfextract/internal/observability"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultMinTextLength is the number of characters a strategy must
	// exceed before the cascade accepts its output
	DefaultMinTextLength = 40

	// DefaultMaxTextLength caps the text returned to callers
	DefaultMaxTextLength = 10000
)

// Extractor turns PDF bytes into a Result
type Extractor interface {
	Extract(ctx context.Context, pdf []byte) (*Result, error)
}

// Attempt describes one strategy invocation within a cascade run
type Attempt struct {
	Method   Method
	Length   int
	Duration time.Duration
	Err      error
}

// AttemptHook is called after every strategy invocation
type AttemptHook func(Attempt)

// Result is the outcome of a successful cascade run
type Result struct {
	Method    Method        `json:"method_used"`
	Text      string        `json:"text"`
	Pages     int           `json:"pages"`
	Truncated bool          `json:"truncated"`
	Duration  time.Duration `json:"duration"`
	Attempts  []Attempt     `json:"-"`
}

// Cascade runs the text layer, fast OCR and accurate OCR strategies in
// order and returns the first output that clears the length threshold.
// The last strategy is returned regardless of its length.
type Cascade struct {
	chain         []Strategy
	minTextLength int
	maxTextLength int
	timeout       time.Duration
	hooks         []AttemptHook
}

// Option configures a Cascade
type Option func(*Cascade)

// WithMinTextLength sets the threshold a strategy's output must exceed
func WithMinTextLength(n int) Option {
	return func(c *Cascade) {
		if n >= 0 {
			c.minTextLength = n
		}
	}
}

// WithMaxTextLength sets the maximum number of characters returned
func WithMaxTextLength(n int) Option {
	return func(c *Cascade) {
		if n > 0 {
			c.maxTextLength = n
		}
	}
}

// WithTimeout bounds a whole cascade run. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Cascade) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithAttemptHook registers a hook called after each strategy invocation
func WithAttemptHook(hook AttemptHook) Option {
	return func(c *Cascade) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

// NewCascade creates a cascade over the three strategies
func NewCascade(textLayer, fast, accurate Strategy, opts ...Option) *Cascade {
	c := &Cascade{
		chain:         []Strategy{textLayer, fast, accurate},
		minTextLength: DefaultMinTextLength,
		maxTextLength: DefaultMaxTextLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MinTextLength returns the acceptance threshold
func (c *Cascade) MinTextLength() int {
	return c.minTextLength
}

// MaxTextLength returns the cap applied to returned text
func (c *Cascade) MaxTextLength() int {
	return c.maxTextLength
}

// Extract runs the cascade. Any strategy error aborts the run; later
// strategies are not tried.
func (c *Cascade) Extract(ctx context.Context, pdf []byte) (*Result, error) {
	if len(pdf) == 0 {
		return nil, ErrEmptyDocument
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	attempts := make([]Attempt, 0, len(c.chain))
	last := len(c.chain) - 1

	for i, strategy := range c.chain {
		out, attempt := c.run(ctx, strategy, pdf)
		attempts = append(attempts, attempt)
		for _, hook := range c.hooks {
			hook(attempt)
		}

		if attempt.Err != nil {
			log.Error().
				Err(attempt.Err).
				Str("method", string(attempt.Method)).
				Dur("duration", attempt.Duration).
				Msg("Extraction strategy failed, aborting")
			return nil, &StrategyError{Method: attempt.Method, Err: attempt.Err}
		}

		if i == last || attempt.Length > c.minTextLength {
			text, truncated := TruncateText(out.Text, c.maxTextLength)
			log.Debug().
				Str("method", string(attempt.Method)).
				Int("length", attempt.Length).
				Int("pages", len(out.Pages)).
				Bool("truncated", truncated).
				Msg("Extraction strategy accepted")
			return &Result{
				Method:    attempt.Method,
				Text:      text,
				Pages:     len(out.Pages),
				Truncated: truncated,
				Duration:  time.Since(start),
				Attempts:  attempts,
			}, nil
		}

		log.Debug().
			Str("method", string(attempt.Method)).
			Int("length", attempt.Length).
			Int("threshold", c.minTextLength).
			Msg("Extracted text below threshold, falling back")
	}

	// unreachable with a non-empty chain
	return nil, fmt.Errorf("no extraction strategy configured")
}

// run invokes a strategy, converting collaborator panics into errors
func (c *Cascade) run(ctx context.Context, strategy Strategy, pdf []byte) (out *Output, attempt Attempt) {
	attempt.Method = strategy.Method()
	ctx, span := observability.StartStrategySpan(ctx, string(attempt.Method), len(pdf))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("method", string(attempt.Method)).
				Str("stack", string(debug.Stack())).
				Msgf("Extraction strategy panicked: %v", r)
			out = nil
			attempt.Err = fmt.Errorf("panic: %v", r)
		}
		attempt.Duration = time.Since(start)
		span.SetAttributes(attribute.Int("extract.length", attempt.Length))
		observability.EndSpan(span, attempt.Err)
	}()

	out, attempt.Err = strategy.Extract(ctx, pdf)
	if attempt.Err == nil && out == nil {
		out = &Output{}
	}
	attempt.Length = out.ContentLength()
	return out, attempt
}

// TruncateText cuts s to at most max characters without splitting a rune
func TruncateText(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}
