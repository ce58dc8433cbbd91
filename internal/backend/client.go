// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend root; endpoint paths are appended to it
	// (default: http://127.0.0.1:8000).
	BaseURL string

	// Timeout for list, delete and chat requests (default: 2m). Answers are
	// generated by an LLM behind the backend and can take a while.
	Timeout time.Duration

	// UploadTimeout covers the whole upload, including server-side
	// transcription (default: 30m).
	UploadTimeout time.Duration

	// RequestsPerSecond and Burst configure the client-side limiter.
	// Requests wait for a token; they are never retried.
	RequestsPerSecond float64
	Burst             int

	// UserAgent sent with every request.
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8000",
		Timeout:           2 * time.Minute,
		UploadTimeout:     30 * time.Minute,
		RequestsPerSecond: 5,
		Burst:             5,
		UserAgent:         "coursechat",
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the course chat backend over HTTP.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a backend client. Zero values in config are replaced by
// the defaults.
func NewClient(config *ClientConfig, opts ...Option) *Client {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	cfg := *config

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaults.UploadTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	c := &Client{
		config: &cfg,
		// Per-request deadlines come from contexts; an upload may legitimately
		// outlive any fixed client timeout.
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + path
}

// do sends req and classifies the outcome. On success the caller owns
// resp.Body.
func (c *Client) do(op string, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, networkError(op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return nil, networkError(op, err)
	}

	c.logger.Debug("backend request complete",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, serverError(op, resp)
	}
	return resp, nil
}

// =============================================================================
// COURSE OPERATIONS
// =============================================================================

// ListCourses retrieves every course the backend has processed.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	const op = "list courses"

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("courses"), nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Message: "failed to create request", Cause: err}
	}

	resp, err := c.do(op, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body listCoursesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, invalidResponse(op, "failed to decode response", err)
	}
	if body.Courses == nil {
		return nil, invalidResponse(op, "response has no courses", nil)
	}

	courses := make([]Course, 0, len(*body.Courses))
	for i, course := range *body.Courses {
		if course.ID == "" {
			return nil, invalidResponse(op, fmt.Sprintf("course %d has no course_id", i), nil)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// DeleteCourse removes a course and its indexed content.
func (c *Client) DeleteCourse(ctx context.Context, courseID string) error {
	const op = "delete course"
	if courseID == "" {
		return ErrEmptyCourseID
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("course/"+url.PathEscape(courseID)), nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: "failed to create request", Cause: err}
	}

	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// UploadCourse sends a video for processing. The body is streamed; nothing
// is buffered in memory. The call returns once the backend has finished
// processing, which can take minutes for long videos.
func (c *Client) UploadCourse(ctx context.Context, upload Upload) error {
	const op = "upload course"
	if upload.CourseID == "" {
		return ErrEmptyCourseID
	}
	if upload.Body == nil {
		return &Error{Kind: KindUnknown, Op: op, Message: "upload has no body"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.UploadTimeout)
	defer cancel()

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUpload(mw, upload))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("process-video"), pr)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeUpload(mw *multipart.Writer, upload Upload) error {
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`,
		quoteEscaper.Replace(filepath.Base(upload.FileName))))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, upload.Body); err != nil {
		return fmt.Errorf("copy video: %w", err)
	}
	if err := mw.WriteField("course_id", upload.CourseID); err != nil {
		return err
	}
	if err := mw.WriteField("course_name", upload.CourseName); err != nil {
		return err
	}
	return mw.Close()
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// SendChatMessage asks a question about a course. history is the transcript
// so far, without the question being asked; the backend uses it for
// conversational context.
func (c *Client) SendChatMessage(ctx context.Context, question, courseID string, history []ChatTurn) (*ChatResponse, error) {
	const op = "chat"
	if courseID == "" {
		return nil, ErrEmptyCourseID
	}
	if history == nil {
		history = []ChatTurn{}
	}

	body, err := json.Marshal(ChatRequest{
		Question:    question,
		CourseID:    courseID,
		ChatHistory: history,
	})
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: op, Message: "failed to marshal request", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("chat"), bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(op, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var wire chatResponseWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, invalidResponse(op, "failed to decode response", err)
	}
	if wire.Response == nil {
		return nil, invalidResponse(op, "response has no answer", nil)
	}
	return &ChatResponse{Response: *wire.Response}, nil
}
