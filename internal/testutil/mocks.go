// Package testutil provides shared test utilities and mocks for unit testing.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fluxbase-eu/pdfextract/internal/extract"
	"github.com/fluxbase-eu/pdfextract/internal/raster"
)

// ErrMock is a generic error returned by mocks configured to fail
var ErrMock = errors.New("mock failure")

// MockStrategy implements extract.Strategy for testing
type MockStrategy struct {
	mu sync.Mutex

	MethodName extract.Method
	Output     *extract.Output
	Err        error

	// OnExtract overrides Output and Err when set
	OnExtract func(ctx context.Context, pdf []byte) (*extract.Output, error)

	calls int
}

// NewMockStrategy creates a strategy that returns text as a single page
func NewMockStrategy(method extract.Method, text string) *MockStrategy {
	return &MockStrategy{
		MethodName: method,
		Output:     &extract.Output{Text: text, Pages: []string{text}},
	}
}

// NewFailingStrategy creates a strategy that always returns err
func NewFailingStrategy(method extract.Method, err error) *MockStrategy {
	return &MockStrategy{MethodName: method, Err: err}
}

func (m *MockStrategy) Method() extract.Method {
	return m.MethodName
}

func (m *MockStrategy) Extract(ctx context.Context, pdf []byte) (*extract.Output, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.OnExtract != nil {
		return m.OnExtract(ctx, pdf)
	}
	return m.Output, m.Err
}

// Calls returns how many times Extract was invoked
func (m *MockStrategy) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockExtractor implements extract.Extractor for testing
type MockExtractor struct {
	mu sync.Mutex

	Result *extract.Result
	Err    error

	// OnExtract overrides Result and Err when set
	OnExtract func(ctx context.Context, pdf []byte) (*extract.Result, error)

	calls    int
	lastBody []byte
}

func (m *MockExtractor) Extract(ctx context.Context, pdf []byte) (*extract.Result, error) {
	m.mu.Lock()
	m.calls++
	m.lastBody = append([]byte(nil), pdf...)
	m.mu.Unlock()

	if m.OnExtract != nil {
		return m.OnExtract(ctx, pdf)
	}
	if m.Result == nil && m.Err == nil {
		return &extract.Result{}, nil
	}
	if m.Result != nil {
		copied := *m.Result
		return &copied, m.Err
	}
	return nil, m.Err
}

// Calls returns how many times Extract was invoked
func (m *MockExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastBody returns the document bytes of the most recent call
func (m *MockExtractor) LastBody() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBody
}

// MockRasterizer implements raster.Rasterizer, emitting one fake image per
// configured page
type MockRasterizer struct {
	Pages [][]byte
	Err   error

	mu   sync.Mutex
	dpis []int
}

func (m *MockRasterizer) Name() string {
	return "mock"
}

func (m *MockRasterizer) Render(ctx context.Context, pdf []byte, dpi int, fn raster.PageFunc) error {
	m.mu.Lock()
	m.dpis = append(m.dpis, dpi)
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if len(m.Pages) == 0 {
		return raster.ErrNoPages
	}
	for i, page := range m.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i+1, page); err != nil {
			return err
		}
	}
	return nil
}

// DPIs returns the resolution requested by each Render call
func (m *MockRasterizer) DPIs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.dpis...)
}

// MockEngine implements ocr.Engine by mapping image bytes to text
type MockEngine struct {
	EngineName  string
	Texts       map[string]string
	Err         error
	Unavailable bool

	mu     sync.Mutex
	closed bool
}

func (m *MockEngine) Name() string {
	if m.EngineName == "" {
		return "Mock OCR"
	}
	return m.EngineName
}

func (m *MockEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Texts[string(image)], nil
}

func (m *MockEngine) IsAvailable() bool {
	return !m.Unavailable
}

func (m *MockEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called
func (m *MockEngine) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockStore implements cache.Store in memory without expiry
type MockStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration

	GetErr error
	SetErr error
}

// NewMockStore creates an empty mock cache store
func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.ttls[key] = ttl
	return nil
}

func (m *MockStore) Close() error {
	return nil
}

// Len returns the number of stored entries
func (m *MockStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// TTL returns the TTL a key was stored with
func (m *MockStore) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}
