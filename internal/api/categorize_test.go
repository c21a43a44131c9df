package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeRequestError(t *testing.T) {
	tests := []struct {
		name   string
		errStr string
		want   string
	}{
		{"empty error", "", ""},
		{"context deadline exceeded", `Post "http://localhost:5000/generate": context deadline exceeded`, msgTimeout},
		{"DNS lookup failure", "dial tcp: lookup nonexistent.example.com: no such host", msgDNS},
		{"connection refused", "dial tcp 127.0.0.1:9999: connect: connection refused", msgRefused},
		{"connection reset", "read tcp 127.0.0.1:5000->127.0.0.1:54321: read: connection reset by peer", msgReset},
		{"network unreachable", "dial tcp: network is unreachable", msgUnreachable},
		{"proxy before refused", "proxyconnect tcp: dial tcp 127.0.0.1:8080: connect: connection refused", msgProxy},
		{"too many redirects", `Get "http://example.com": stopped after 10 redirects`, msgRedirects},
		{"invalid URL", "unsupported protocol scheme", msgInvalidURL},
		{"EOF error", "unexpected EOF", msgEOF},
		{"generic timeout", "i/o timeout", msgConnTimeout},
		{"malformed HTTP", "malformed HTTP response", msgMalformed},
		{"context canceled", "context canceled", msgCancelled},
		{"unknown error", "something went wrong", "Request failed: something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeRequestError(tt.errStr))
		})
	}
}

func TestDescribeTLSError(t *testing.T) {
	tests := []struct {
		name   string
		errStr string
		prefix string
	}{
		{"unknown authority", "x509: certificate signed by unknown authority", "TLS certificate verification failed"},
		{"expired", "x509: certificate has expired or is not yet valid", "TLS certificate has expired"},
		{"hostname mismatch", "x509: certificate is valid for example.com, not example.org", "TLS hostname mismatch"},
		{"handshake", "tls: handshake failure", "TLS handshake failed"},
		{"bad certificate", "tls: bad certificate", "TLS bad certificate"},
		{"certificate required", "tls: certificate required", "TLS client certificate required"},
		{"generic", "tls: some other error", "TLS/SSL error - check the tls settings: tls: some other error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeRequestError(tt.errStr)
			assert.True(t, strings.HasPrefix(got, tt.prefix), "got %q", got)
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"deadline", context.DeadlineExceeded, msgTimeout},
		{"canceled", context.Canceled, msgCancelled},
		{"url error with timeout", &url.Error{Op: "Post", URL: "http://localhost:5000/generate", Err: context.DeadlineExceeded}, msgTimeout},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, msgRefused},
		{"reset", &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, msgReset},
		{"unreachable", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ENETUNREACH}, msgUnreachable},
		{"host unreachable", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH}, msgHostUnreach},
		{
			"dns error inside url error",
			&url.Error{Op: "Post", URL: "http://localhost:5000/generate", Err: &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "x", Name: "y"}}},
			msgDNS,
		},
		{"plain text", errors.New("dial tcp: lookup nope.example: no such host"), msgDNS},
		{"wrapped with fmt", fmt.Errorf("generate: %w", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}), msgRefused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.err))
		})
	}
}

func TestCategorizeKnownErrorsHaveNoGenericPrefix(t *testing.T) {
	for _, errStr := range []string{
		"context deadline exceeded",
		"no such host",
		"connection refused",
		"x509: certificate signed by unknown authority",
	} {
		got := describeRequestError(errStr)
		assert.False(t, strings.HasPrefix(got, "Request failed:"), "%q -> %q", errStr, got)
	}
}
