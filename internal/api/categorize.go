package api

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// Transport failure descriptions shown to the user.
const (
	msgCancelled   = "Request cancelled"
	msgTimeout     = "Request timeout - the image service took too long, try increasing the timeout setting"
	msgConnTimeout = "Connection timeout - server took too long to respond, try increasing the timeout setting"
	msgProxy       = "Proxy connection failed - verify HTTP_PROXY/HTTPS_PROXY settings"
	msgDNS         = "DNS resolution failed - verify the base URL hostname and network availability"
	msgRefused     = "Connection refused - check if the image service is running and the port is correct"
	msgReset       = "Connection reset by server - the service may have crashed or a network issue occurred"
	msgUnreachable = "Network unreachable - check network connection and firewall settings"
	msgHostUnreach = "Host unreachable - check if the image service is online and accessible"
	msgRedirects   = "Too many redirects - check the service configuration or base URL"
	msgInvalidURL  = "Invalid URL - verify the base URL format and protocol (http/https)"
	msgEOF         = "Connection closed unexpectedly - the service terminated the connection prematurely"
	msgMalformed   = "Malformed HTTP exchange - the service did not speak valid HTTP"
)

type errorRule struct {
	needles []string
	message string
}

// Order matters: proxy failures usually also contain "connection refused".
var requestErrorRules = []errorRule{
	{[]string{"context canceled", "context cancelled"}, msgCancelled},
	{[]string{"deadline exceeded", "client.timeout exceeded"}, msgTimeout},
	{[]string{"proxy"}, msgProxy},
	{[]string{"no such host", "dial tcp: lookup", "dns"}, msgDNS},
	{[]string{"connection refused"}, msgRefused},
	{[]string{"connection reset"}, msgReset},
	{[]string{"network is unreachable", "no route to host"}, msgUnreachable},
}

var lateErrorRules = []errorRule{
	{[]string{"unsupported protocol", "invalid url", "missing protocol scheme"}, msgInvalidURL},
	{[]string{"eof"}, msgEOF},
	{[]string{"timeout", "timed out"}, msgConnTimeout},
	{[]string{"malformed http"}, msgMalformed},
}

var tlsErrorRules = []errorRule{
	{[]string{"unknown authority", "certificate is not trusted"}, "TLS certificate verification failed - add the CA certificate to tls.ca_file or set tls.insecure_skip_verify"},
	{[]string{"expired"}, "TLS certificate has expired - contact the service administrator or set tls.insecure_skip_verify"},
	{[]string{"certificate is valid for", "name mismatch", "doesn't match"}, "TLS hostname mismatch - certificate doesn't match the requested hostname"},
	{[]string{"handshake"}, "TLS handshake failed - check TLS version compatibility and cipher suites"},
	{[]string{"bad certificate"}, "TLS bad certificate - client certificate may be invalid or not accepted by the service"},
	{[]string{"certificate required"}, "TLS client certificate required - configure tls.cert_file and tls.key_file"},
}

func matchRules(errLower string, rules []errorRule) (string, bool) {
	for _, rule := range rules {
		for _, needle := range rule.needles {
			if strings.Contains(errLower, needle) {
				return rule.message, true
			}
		}
	}
	return "", false
}

// describeRequestError maps a transport error string to an actionable message
func describeRequestError(errStr string) string {
	if errStr == "" {
		return ""
	}
	errLower := strings.ToLower(errStr)

	if msg, ok := matchRules(errLower, requestErrorRules); ok {
		return msg
	}
	if isTLSError(errLower) {
		return describeTLSError(errStr)
	}
	if strings.Contains(errLower, "stopped after") && strings.Contains(errLower, "redirect") {
		return msgRedirects
	}
	if msg, ok := matchRules(errLower, lateErrorRules); ok {
		return msg
	}
	return "Request failed: " + errStr
}

func isTLSError(errLower string) bool {
	for _, marker := range []string{"tls", "ssl", "certificate", "x509"} {
		if strings.Contains(errLower, marker) {
			return true
		}
	}
	return false
}

// describeTLSError provides specific guidance for TLS/SSL certificate errors
func describeTLSError(errStr string) string {
	if msg, ok := matchRules(strings.ToLower(errStr), tlsErrorRules); ok {
		return msg
	}
	return "TLS/SSL error - check the tls settings: " + errStr
}

// Categorize turns a transport error into a user-facing description.
// Typed causes are inspected first, then the message text.
func Categorize(err error) string {
	if err == nil {
		return ""
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return msgTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return msgConnTimeout
		}
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED:
				return msgRefused
			case syscall.ECONNRESET:
				return msgReset
			case syscall.ENETUNREACH:
				return msgUnreachable
			case syscall.EHOSTUNREACH:
				return msgHostUnreach
			}
		}
	}

	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return tlsErrorRules[0].message
	}
	var invalidCert x509.CertificateInvalidError
	if errors.As(err, &invalidCert) {
		return "TLS certificate is invalid: " + invalidCert.Error()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return msgTimeout
	}
	if errors.Is(err, context.Canceled) {
		return msgCancelled
	}

	return describeRequestError(err.Error())
}
