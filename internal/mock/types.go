package mock

import "time"

// Config represents the mock backend configuration
type Config struct {
	Port         int           `json:"port" yaml:"port"`                                       // Server port (default: 5000)
	Host         string        `json:"host" yaml:"host"`                                       // Server host (default: localhost)
	Delay        time.Duration `json:"delay,omitempty" yaml:"delay,omitempty"`                 // Latency added to POST /generate
	FailRate     float64       `json:"failRate,omitempty" yaml:"failRate,omitempty"`           // Probability (0..1) that a generation fails
	FailPattern  string        `json:"failPattern,omitempty" yaml:"failPattern,omitempty"`     // Prompts matching this regex always fail
	HistoryLimit int           `json:"historyLimit,omitempty" yaml:"historyLimit,omitempty"`   // Server-side history cap (default: 10)
	Logging      bool          `json:"logging" yaml:"logging"`                                 // Keep a request log
}

// Record is one server-side history element, newest first
type Record struct {
	Prompt    string `json:"prompt"`
	Filename  string `json:"filename"`
	ImageURL  string `json:"image_url"`
	Timestamp string `json:"timestamp"`
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	RequestID string        `json:"requestId,omitempty"`
	Status    int           `json:"status"`
	Duration  time.Duration `json:"duration"`
}
