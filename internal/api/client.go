package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/studiowebux/text2image/internal/executor"
	"github.com/studiowebux/text2image/internal/types"
)

// Service paths
const (
	PathGenerate    = "/generate"
	PathHistory     = "/generate/history"
	PathStats       = "/generate/stats"
	PathClear       = "/generate/clear"
	PathDownloadAll = "/image/download-all"
)

// Default local filenames for saved images
const (
	ImageFilename   = "generated_image.png"
	ArchiveFilename = "generated_images.zip"
)

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	TLS        *types.TLSConfig
	UserAgent  string
	Logger     *log.Logger
	HTTPClient *http.Client
}

// Client talks to the image generation service
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *log.Logger
}

// NewClient creates a client for the service rooted at opts.BaseURL
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient, err = executor.NewHTTPClient(opts.TLS, opts.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: opts.UserAgent,
		logger:    logger,
	}, nil
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ResolveURL resolves an opaque image reference against the base URL.
// Absolute references are returned unchanged.
func (c *Client) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid image URL %q: %w", ref, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	if u.Host != "" {
		u.Scheme = c.baseURL.Scheme
		return u.String(), nil
	}
	base := *c.baseURL
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(&url.URL{Path: strings.TrimPrefix(u.Path, "/"), RawQuery: u.RawQuery}).String(), nil
}

// DownloadAllURL is the bulk archive location
func (c *Client) DownloadAllURL() string {
	u, _ := c.ResolveURL(PathDownloadAll)
	return u
}

func (c *Client) headers(requestID string) map[string]string {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	h := map[string]string{
		"Accept":       "application/json",
		"X-Request-ID": requestID,
	}
	if c.userAgent != "" {
		h["User-Agent"] = c.userAgent
	}
	return h
}

func (c *Client) do(ctx context.Context, op, method, path, body, requestID string) (*types.RequestResult, error) {
	target, err := c.ResolveURL(path)
	if err != nil {
		return nil, err
	}
	req := &types.HttpRequest{
		Method:  method,
		URL:     target,
		Headers: c.headers(requestID),
		Body:    body,
	}
	if body != "" {
		req.Headers["Content-Type"] = "application/json"
	}

	result, err := executor.Execute(ctx, c.http, req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "url", target, "err", err)
		return nil, &TransportError{Op: op, Err: err}
	}
	c.logger.Debug("request completed", "op", op, "status", result.Status,
		"duration", executor.FormatDuration(result.Duration), "request_id", req.Headers["X-Request-ID"])
	return result, nil
}

// Generate submits a prompt. A returned response always has a non-empty ImageURL.
func (c *Client) Generate(ctx context.Context, in types.GenerateRequest) (*types.GenerateResponse, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	result, err := c.do(ctx, "generate", http.MethodPost, PathGenerate, string(body), in.RequestID)
	if err != nil {
		return nil, err
	}

	var out types.GenerateResponse
	decodeErr := decodeResult(result, &out)

	if !executor.IsSuccessStatus(result.Status) {
		msg := ""
		if decodeErr == nil {
			msg = out.Error
		}
		return nil, &ServiceError{Status: result.Status, Message: msg}
	}
	if decodeErr != nil {
		return nil, &MalformedResponseError{Status: result.Status, Reason: decodeErr.Error()}
	}
	if strings.TrimSpace(out.ImageURL) == "" {
		return nil, &MalformedResponseError{Status: result.Status, Reason: "missing image_url", Message: out.Error}
	}
	return &out, nil
}

// FetchHistory returns the server-side history, newest first.
// A body that is not a JSON array yields a MalformedResponseError.
func (c *Client) FetchHistory(ctx context.Context) ([]types.HistoryRecord, error) {
	result, err := c.do(ctx, "fetch history", http.MethodGet, PathHistory, "", "")
	if err != nil {
		return nil, err
	}
	if !executor.IsSuccessStatus(result.Status) {
		return nil, &ServiceError{Status: result.Status, Message: errorText(result)}
	}

	// null and objects decode without error into a slice; only an array is history
	if body := strings.TrimSpace(result.Body); !strings.HasPrefix(body, "[") {
		return nil, &MalformedResponseError{Status: result.Status, Reason: "history is not an array"}
	}

	var records []types.HistoryRecord
	if err := decodeResult(result, &records); err != nil {
		return nil, &MalformedResponseError{Status: result.Status, Reason: "history is not an array: " + err.Error()}
	}
	return records, nil
}

// FetchStats returns the aggregate statistics snapshot
func (c *Client) FetchStats(ctx context.Context) (*types.StatsSnapshot, error) {
	result, err := c.do(ctx, "fetch stats", http.MethodGet, PathStats, "", "")
	if err != nil {
		return nil, err
	}
	if !executor.IsSuccessStatus(result.Status) {
		return nil, &ServiceError{Status: result.Status, Message: errorText(result)}
	}

	var stats types.StatsSnapshot
	if err := decodeResult(result, &stats); err != nil {
		return nil, &MalformedResponseError{Status: result.Status, Reason: err.Error()}
	}
	if stats.TopPrompts == nil {
		stats.TopPrompts = []types.PromptCount{}
	}
	if stats.Recent == nil {
		stats.Recent = []types.RecentPrompt{}
	}
	return &stats, nil
}

// ClearHistory asks the service to drop its history
func (c *Client) ClearHistory(ctx context.Context) error {
	result, err := c.do(ctx, "clear history", http.MethodPost, PathClear, "", "")
	if err != nil {
		return err
	}
	if !executor.IsSuccessStatus(result.Status) {
		return &ServiceError{Status: result.Status, Message: errorText(result)}
	}
	return nil
}

// DownloadImage saves the image behind ref to dest and returns the byte count
func (c *Client) DownloadImage(ctx context.Context, ref, dest string) (int64, error) {
	target, err := c.ResolveURL(ref)
	if err != nil {
		return 0, err
	}
	return c.download(ctx, "download image", target, dest)
}

// DownloadAll saves the bulk archive to dest
func (c *Client) DownloadAll(ctx context.Context, dest string) (int64, error) {
	return c.download(ctx, "download all", c.DownloadAllURL(), dest)
}

func (c *Client) download(ctx context.Context, op, target, dest string) (int64, error) {
	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".text2image-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	req := &types.HttpRequest{Method: http.MethodGet, URL: target, Headers: c.headers("")}
	delete(req.Headers, "Accept")

	result, err := executor.Stream(ctx, c.http, req, tmp)
	closeErr := tmp.Close()
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	if !executor.IsSuccessStatus(result.Status) {
		return 0, &ServiceError{Status: result.Status, Message: errorText(result)}
	}
	if result.Error != "" {
		return 0, &TransportError{Op: op, Err: errors.New(result.Error)}
	}
	if closeErr != nil {
		return 0, fmt.Errorf("failed to write %s: %w", dest, closeErr)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("failed to save %s: %w", dest, err)
	}
	c.logger.Info("saved file", "op", op, "path", dest, "size", executor.FormatSize(result.ResponseSize))
	return int64(result.ResponseSize), nil
}

func decodeResult(result *types.RequestResult, v any) error {
	if result.Error != "" {
		return errors.New(result.Error)
	}
	if err := json.Unmarshal([]byte(result.Body), v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// errorText returns the "error" field of a JSON failure body, if any
func errorText(result *types.RequestResult) string {
	var body types.ErrorBody
	if json.Unmarshal([]byte(result.Body), &body) != nil {
		return ""
	}
	return body.Error
}
