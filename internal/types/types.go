package types

// Origin identifies what triggered a generation. It only affects UX copy.
type Origin string

const (
	OriginInput    Origin = "input"
	OriginTemplate Origin = "template"
	OriginHistory  Origin = "history"
	OriginCLI      Origin = "cli"
)

// HttpRequest represents a raw HTTP request handed to the executor
type HttpRequest struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`
}

// RequestResult represents the result of executing an HTTP request
type RequestResult struct {
	Status       int               `json:"status"`
	StatusText   string            `json:"statusText"`
	Headers      map[string]string `json:"headers"`
	Body         string            `json:"body"`
	Duration     int64             `json:"duration"`     // milliseconds
	RequestSize  int               `json:"requestSize"`  // bytes
	ResponseSize int               `json:"responseSize"` // bytes
	Error        string            `json:"error,omitempty"`
}

// TLSConfig holds TLS/mTLS settings for the service connection
type TLSConfig struct {
	CertFile           string `json:"cert_file,omitempty" yaml:"cert_file,omitempty"`
	KeyFile            string `json:"key_file,omitempty" yaml:"key_file,omitempty"`
	CAFile             string `json:"ca_file,omitempty" yaml:"ca_file,omitempty"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
}

// IsZero reports whether no TLS option is set
func (t *TLSConfig) IsZero() bool {
	return t == nil || (t.CertFile == "" && t.KeyFile == "" && t.CAFile == "" && !t.InsecureSkipVerify)
}

// GenerateRequest is the body of POST /generate.
// RequestID is sent as the X-Request-ID header, not in the body.
type GenerateRequest struct {
	Prompt    string `json:"prompt"`
	RequestID string `json:"-"`
}

// GenerateResponse is the reply of POST /generate
type GenerateResponse struct {
	Prompt   string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ErrorBody is the generic failure payload of the service
type ErrorBody struct {
	Error string `json:"error"`
}

// HistoryRecord is one element of GET /generate/history
type HistoryRecord struct {
	Prompt    string `json:"prompt" yaml:"prompt"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	ImageURL  string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// PromptCount pairs a prompt with how often it was generated
type PromptCount struct {
	Prompt string `json:"prompt" yaml:"prompt"`
	Count  int    `json:"count" yaml:"count"`
}

// RecentPrompt pairs a prompt with its generation timestamp
type RecentPrompt struct {
	Prompt    string `json:"prompt" yaml:"prompt"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// StatsSnapshot is the reply of GET /generate/stats
type StatsSnapshot struct {
	Total      int            `json:"total" yaml:"total"`
	TopPrompts []PromptCount  `json:"top_prompts" yaml:"top_prompts"`
	Recent     []RecentPrompt `json:"recent" yaml:"recent"`
}
