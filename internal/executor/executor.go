package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/studiowebux/text2image/internal/types"
)

// maxErrorBody bounds how much of a failed download response is kept
const maxErrorBody = 64 * 1024

// Execute performs an HTTP request and returns the buffered result
func Execute(ctx context.Context, client *http.Client, req *types.HttpRequest) (*types.RequestResult, error) {
	startTime := time.Now()

	httpReq, requestSize, err := newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(httpReq)
	duration := time.Since(startTime).Milliseconds()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Read response body
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.RequestResult{
			Status:      resp.StatusCode,
			StatusText:  resp.Status,
			Headers:     flattenHeaders(resp.Header),
			Error:       fmt.Sprintf("failed to read response body: %v", err),
			Duration:    duration,
			RequestSize: requestSize,
		}, nil
	}

	return &types.RequestResult{
		Status:       resp.StatusCode,
		StatusText:   resp.Status,
		Headers:      flattenHeaders(resp.Header),
		Body:         string(bodyBytes),
		Duration:     time.Since(startTime).Milliseconds(),
		RequestSize:  requestSize,
		ResponseSize: len(bodyBytes),
	}, nil
}

// Stream performs a request and copies a 2xx body into w.
// Non-2xx bodies are buffered into the result instead and w is left untouched.
func Stream(ctx context.Context, client *http.Client, req *types.HttpRequest, w io.Writer) (*types.RequestResult, error) {
	startTime := time.Now()

	httpReq, requestSize, err := newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &types.RequestResult{
		Status:      resp.StatusCode,
		StatusText:  resp.Status,
		Headers:     flattenHeaders(resp.Header),
		RequestSize: requestSize,
	}

	if !IsSuccessStatus(resp.StatusCode) {
		bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			result.Error = fmt.Sprintf("failed to read response body: %v", err)
		}
		result.Body = string(bodyBytes)
		result.ResponseSize = len(bodyBytes)
		result.Duration = time.Since(startTime).Milliseconds()
		return result, nil
	}

	n, err := io.Copy(w, resp.Body)
	result.ResponseSize = int(n)
	result.Duration = time.Since(startTime).Milliseconds()
	if err != nil {
		result.Error = fmt.Sprintf("failed to read response body: %v", err)
	}
	return result, nil
}

func newRequest(ctx context.Context, req *types.HttpRequest) (*http.Request, int, error) {
	var bodyReader io.Reader
	requestSize := 0
	if req.Body != "" {
		bodyReader = bytes.NewBufferString(req.Body)
		requestSize = len(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	return httpReq, requestSize, nil
}

func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for key, values := range h {
		headers[key] = strings.Join(values, ", ")
	}
	return headers
}

// NewHTTPClient creates an HTTP client with optional TLS/mTLS configuration.
// A zero timeout means requests never time out on their own.
func NewHTTPClient(tlsConfig *types.TLSConfig, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if !tlsConfig.IsZero() {
		tlsCfg := &tls.Config{
			InsecureSkipVerify: tlsConfig.InsecureSkipVerify,
		}

		// Load client certificate if provided (for mTLS)
		if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
			cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load client certificate: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}

		// Load CA certificate if provided (for server verification)
		if tlsConfig.CAFile != "" {
			caCert, err := os.ReadFile(tlsConfig.CAFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read CA certificate: %w", err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				return nil, fmt.Errorf("failed to parse CA certificate")
			}
			tlsCfg.RootCAs = caCertPool
		}

		transport.TLSClientConfig = tlsCfg
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

// FormatSize formats byte size to human-readable string
func FormatSize(bytes int) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	}
	if bytes < 1024*1024 {
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024.0)
	}
	return fmt.Sprintf("%.2fMB", float64(bytes)/(1024.0*1024.0))
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
