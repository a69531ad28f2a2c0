// Package gateway is the HTTP client for the semantic scoring service.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"semcheck/internal/domain"
	"semcheck/internal/logging"
)

// Operation names used in errors and logs.
const (
	OpExtract = "extract-text"
	OpCompare = "compare-text"
	OpCheck   = "check-text"
	OpStatus  = "status"
)

const maxResponseBytes = 10 << 20

// Config configures the scoring service client.
type Config struct {
	BaseURL string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
	// RequestsPerSecond of zero or less means unlimited.
	RequestsPerSecond float64
	MaxUploadBytes    int64
}

// Client talks to the scoring service. It never retries.
type Client struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	maxUpload int64
}

// ServiceStatus is the service's root health payload.
type ServiceStatus struct {
	Status string `json:"status"`
	Device string `json:"device"`
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gateway: invalid base url %q", cfg.BaseURL)
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(limit, 1),
		maxUpload: maxUpload,
	}, nil
}

type compareRequest struct {
	Text1 string `json:"text1"`
	Text2 string `json:"text2"`
}

type compareResponse struct {
	Similarity float64 `json:"similarity"`
}

type checkRequest struct {
	Text string `json:"text"`
}

type checkResponse struct {
	AverageScore float64 `json:"average_score"`
	Results      []struct {
		DocumentName string  `json:"document_name"`
		Similarity   float64 `json:"similarity"`
		PreviewText  string  `json:"preview_text"`
	} `json:"results"`
}

type extractResponse struct {
	Text string `json:"text"`
}

// Extract uploads a .txt or .docx file and returns the server-extracted text.
func (c *Client) Extract(ctx context.Context, file domain.Upload) (string, error) {
	if file.Body == nil {
		return "", &UnexpectedError{Op: OpExtract, Err: errors.New("file has no content")}
	}
	content, err := io.ReadAll(io.LimitReader(file.Body, c.maxUpload+1))
	if err != nil {
		return "", &UnexpectedError{Op: OpExtract, Err: fmt.Errorf("read %s: %w", file.Name, err)}
	}
	if int64(len(content)) > c.maxUpload {
		return "", &UnexpectedError{Op: OpExtract, Err: fmt.Errorf("%s exceeds the %d byte upload limit", file.Name, c.maxUpload)}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return "", &UnexpectedError{Op: OpExtract, Err: err}
	}
	if _, err := part.Write(content); err != nil {
		return "", &UnexpectedError{Op: OpExtract, Err: err}
	}
	if err := mw.Close(); err != nil {
		return "", &UnexpectedError{Op: OpExtract, Err: err}
	}

	var out extractResponse
	if err := c.do(ctx, OpExtract, http.MethodPost, "/api/extract-text", mw.FormDataContentType(), &body, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

// Compare scores two texts against each other.
func (c *Client) Compare(ctx context.Context, text1, text2 string) (domain.CompareResult, error) {
	var out compareResponse
	if err := c.postJSON(ctx, OpCompare, "/api/compare-text", compareRequest{Text1: text1, Text2: text2}, &out); err != nil {
		return domain.CompareResult{}, err
	}
	return domain.CompareResult{Similarity: out.Similarity}, nil
}

// Check scores one text against the service's corpus. Matches are returned
// in the order the service ranked them.
func (c *Client) Check(ctx context.Context, text string) (domain.CheckResult, error) {
	var out checkResponse
	if err := c.postJSON(ctx, OpCheck, "/api/check-text", checkRequest{Text: text}, &out); err != nil {
		return domain.CheckResult{}, err
	}
	matches := make([]domain.Match, 0, len(out.Results))
	for _, r := range out.Results {
		matches = append(matches, domain.Match{
			DocumentName:    r.DocumentName,
			SimilarityScore: r.Similarity,
			PreviewText:     r.PreviewText,
		})
	}
	return domain.CheckResult{AverageScore: out.AverageScore, Matches: matches}, nil
}

// Status probes the service root.
func (c *Client) Status(ctx context.Context) (ServiceStatus, error) {
	var out ServiceStatus
	err := c.do(ctx, OpStatus, http.MethodGet, "/", "", nil, &out)
	return out, err
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &UnexpectedError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}
	return c.do(ctx, op, http.MethodPost, path, "application/json", bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &UnexpectedError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	lg := logging.WithPrefix("gateway")
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		lg.Warn("gateway request failed", "op", op, "request_id", reqID, "err", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	lg.Debug("gateway response", "op", op, "request_id", reqID, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{
			Op:         op,
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Detail:     parseDetail(payload),
		}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &UnexpectedError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// statusText keeps the server's own reason phrase when it sent one.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
