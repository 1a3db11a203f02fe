package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusFetcher fetches a single status snapshot. Implemented by *Client and
// faked in poller tests.
type StatusFetcher interface {
	FetchStatus(ctx context.Context) (*StatusResponse, error)
}

// Service is the full set of calls the coordinator issues.
type Service interface {
	StatusFetcher
	StartScrape(ctx context.Context) (ScrapeResponse, error)
	ScrapeURL(ctx context.Context, target string) (ScrapeResponse, error)
	Ask(ctx context.Context, question string) (ChatResponse, error)
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// Client talks to the knowledge-base HTTP API.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	userAgent      string
	requestTimeout time.Duration
	chatTimeout    time.Duration
	logger         *zap.Logger
}

const (
	defaultAPIURL         = "http://127.0.0.1:8000"
	defaultUserAgent      = "kbchat/0.1"
	defaultRequestTimeout = 10 * time.Second
	defaultChatTimeout    = 2 * time.Minute
	maxErrorBody          = 64 * 1024
)

// Options tune a Client. Zero values use defaults.
type Options struct {
	RequestTimeout time.Duration
	ChatTimeout    time.Duration
	UserAgent      string
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// NewClient builds a Client for the service rooted at apiURL.
func NewClient(apiURL string, opts Options) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:        base,
		http:           opts.HTTPClient,
		userAgent:      opts.UserAgent,
		requestTimeout: opts.RequestTimeout,
		chatTimeout:    opts.ChatTimeout,
		logger:         opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.requestTimeout <= 0 {
		c.requestTimeout = defaultRequestTimeout
	}
	if c.chatTimeout <= 0 {
		c.chatTimeout = defaultChatTimeout
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchStatus retrieves the ingestion and readiness flags.
func (c *Client) FetchStatus(ctx context.Context) (*StatusResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload StatusResponse
	if err := c.do(ctx, c.requestTimeout, http.MethodGet, "/status", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// StartScrape starts whole-site ingestion.
func (c *Client) StartScrape(ctx context.Context) (ScrapeResponse, error) {
	if c == nil {
		return ScrapeResponse{}, fmt.Errorf("client is nil")
	}
	var payload ScrapeResponse
	if err := c.do(ctx, c.requestTimeout, http.MethodGet, "/scrape", nil, &payload); err != nil {
		return ScrapeResponse{}, err
	}
	return payload, nil
}

// ScrapeURL starts ingestion of a single page.
func (c *Client) ScrapeURL(ctx context.Context, target string) (ScrapeResponse, error) {
	if c == nil {
		return ScrapeResponse{}, fmt.Errorf("client is nil")
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return ScrapeResponse{}, Validation("POST /scrape_url", "URL is required")
	}
	var payload ScrapeResponse
	body := ScrapeURLRequest{URL: target}
	if err := c.do(ctx, c.requestTimeout, http.MethodPost, "/scrape_url", body, &payload); err != nil {
		return ScrapeResponse{}, err
	}
	return payload, nil
}

// Ask sends one question to the chat endpoint.
func (c *Client) Ask(ctx context.Context, question string) (ChatResponse, error) {
	if c == nil {
		return ChatResponse{}, fmt.Errorf("client is nil")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return ChatResponse{}, Validation("POST /chat", "question is required")
	}
	var payload ChatResponse
	if err := c.do(ctx, c.chatTimeout, http.MethodPost, "/chat", ChatRequest{Question: question}, &payload); err != nil {
		return ChatResponse{}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, body, dest any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.With(zap.String("op", op), zap.String("request_id", requestID))
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return transportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug("request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return protocolError(op, resp.StatusCode, readDetail(resp.Body), nil)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return transportError(op, err)
		}
		return protocolError(op, 0, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// readDetail pulls "detail" out of an error body, falling back to the raw text.
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	var envelope errorBody
	if err := json.Unmarshal(raw, &envelope); err == nil && strings.TrimSpace(envelope.Detail) != "" {
		return strings.TrimSpace(envelope.Detail)
	}
	return strings.TrimSpace(string(raw))
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", apiURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
