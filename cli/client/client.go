// Package client provides the HTTP client for a running pdfextract server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fluxbase-eu/pdfextract/internal/extract"
	"github.com/fluxbase-eu/pdfextract/internal/pipeline"
)

// Client is the pdfextract API client
type Client struct {
	// BaseURL is the pdfextract server URL
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// Debug enables debug logging
	Debug bool

	// UserAgent to use for requests
	UserAgent string
}

// ClientOption configures the client
type ClientOption func(*Client)

// NewClient creates a new API client
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			// OCR of a long scan can take minutes
			Timeout: 10 * time.Minute,
		},
		UserAgent: "pdfextract-cli/1.0",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithDebug enables debug mode
func WithDebug(debug bool) ClientOption {
	return func(c *Client) {
		c.Debug = debug
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.HTTPClient.Timeout = timeout
	}
}

// EnginesInfo is the body of GET /api/v1/engines
type EnginesInfo struct {
	MinTextLength int                     `json:"min_text_length" yaml:"min_text_length"`
	MaxTextLength int                     `json:"max_text_length" yaml:"max_text_length"`
	Languages     []string                `json:"languages" yaml:"languages"`
	Engines       []pipeline.EngineStatus `json:"engines" yaml:"engines"`
}

// Extract uploads a PDF and returns the server's response. A response with
// status "error" is returned as is, not as a Go error.
func (c *Client) Extract(ctx context.Context, filename string, pdf []byte) (*extract.Response, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	resp, err := c.request(ctx, http.MethodPost, "/extract_text", body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var result extract.Response
	if err := DecodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Engines returns the server's OCR fallbacks
func (c *Client) Engines(ctx context.Context) (*EnginesInfo, error) {
	resp, err := c.request(ctx, http.MethodGet, "/api/v1/engines", nil, "")
	if err != nil {
		return nil, err
	}

	var info EnginesInfo
	if err := DecodeResponse(resp, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) request(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	// Build URL
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %q", c.BaseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	if c.Debug {
		fmt.Printf("DEBUG: %s %s\n", method, u.String())
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// APIError represents an API error response
type APIError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error with status %d", e.StatusCode)
}

// ParseError parses an error response
func ParseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to read error response: %v", err),
		}
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	apiErr.StatusCode = resp.StatusCode
	return &apiErr
}

// DecodeResponse decodes a successful response into the target
func DecodeResponse(resp *http.Response, target interface{}) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return ParseError(resp)
	}

	if target == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(target)
}
