// Package backend is the HTTP client for the document chat service.
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
	"os"
	"strings"
	"time"

	"notebook/internal/document"
	"notebook/internal/logging"
	"notebook/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	UploadPath = "/api/upload_pdf"
	ChatPath   = "/api/pdf_chat"
	HealthPath = "/api/health"

	// maxErrorBody caps how much of a failed response is kept for diagnostics.
	maxErrorBody = 512
)

// Service is the subset of the backend the UI depends on.
type Service interface {
	UploadDocument(ctx context.Context, doc document.Document, apiKey string) error
	Chat(ctx context.Context, message, apiKey string) (string, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
	if detail := extractDetail(e.Body); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// ChatRequest is the body of POST /api/pdf_chat.
type ChatRequest struct {
	UserMessage string `json:"user_message"`
	APIKey      string `json:"api_key"`
}

// ChatResponse is the success body of POST /api/pdf_chat.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// Client talks to one backend base URL.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every call. Zero leaves calls unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        logging.Get(logging.CategoryAPI),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// UploadDocument sends the file and credential as multipart form fields
// "file" and "api_key". Any 2xx status is success; the body is ignored.
func (c *Client) UploadDocument(ctx context.Context, doc document.Document, apiKey string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, contentType, err := buildUploadBody(doc, apiKey)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UploadPath, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus("upload_pdf", resp); err != nil {
		c.log.Warn("upload rejected", zap.String("document", doc.Name), zap.Error(err))
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.log.Info("document uploaded",
		zap.String("document", doc.Name),
		zap.Int64("bytes", doc.Size),
		describeKey(apiKey),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}

func buildUploadBody(doc document.Document, apiKey string) (*bytes.Buffer, string, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, doc.Name))
	h.Set("Content-Type", doc.ContentType())
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to read document: %w", err)
	}
	if err := w.WriteField("api_key", apiKey); err != nil {
		return nil, "", fmt.Errorf("failed to write api_key field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// Chat sends one user message with the credential and returns the answer.
// Conversation history is not sent.
func (c *Client) Chat(ctx context.Context, message, apiKey string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	jsonData, err := json.Marshal(ChatRequest{UserMessage: message, APIKey: apiKey})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus("pdf_chat", resp); err != nil {
		return "", err
	}

	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	c.log.Info("chat answered",
		zap.Int("question_chars", len(message)),
		zap.Int("answer_chars", len(out.Answer)),
		describeKey(apiKey),
		zap.Duration("latency", time.Since(start)),
	)
	return out.Answer, nil
}

// Health queries the health endpoint and returns its status field.
func (c *Client) Health(ctx context.Context) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus("health", resp); err != nil {
		return "", err
	}

	var out HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return out.Status, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	c.log.Debug("request completed",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

func checkStatus(endpoint string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
}

// extractDetail pulls a human-readable message out of a JSON error body
// ({"detail": ...} or {"error": ...}); other bodies are returned trimmed.
func extractDetail(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
		return ""
	}
	return body
}

// describeKey is used in log fields so the credential itself is never logged.
func describeKey(apiKey string) zap.Field {
	return zap.String("api_key", session.Redact(apiKey))
}
