package generate

import "github.com/studiowebux/text2image/internal/notice"

// Phase is the request lifecycle stage
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInFlight
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInFlight:
		return "in-flight"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Status line texts
const (
	StatusGenerating       = "Generating..."
	StatusPromptPrefix     = "Prompt: "
	StatusFailed           = "Failed to generate image."
	StatusTransportFailure = "Error contacting the server."
)

// State is the visible request state. Everything the UI shows about the
// current request is derived from it.
type State struct {
	Phase Phase
	// Prompt is the accepted prompt of the request that produced this state
	Prompt string
	// Echo is the prompt as echoed by the service on success
	Echo     string
	ImageURL string
	// Message and Kind describe a failure
	Message string
	Kind    notice.Kind
	Seq     uint64
}

// Loading reports whether the loading indicator is shown
func (s State) Loading() bool {
	return s.Phase == PhaseInFlight
}

// HasImage reports whether an image is displayed
func (s State) HasImage() bool {
	return s.Phase == PhaseSucceeded && s.ImageURL != ""
}

// StatusText is the inline status line
func (s State) StatusText() string {
	switch s.Phase {
	case PhaseInFlight:
		return StatusGenerating
	case PhaseSucceeded:
		if s.Echo != "" {
			return StatusPromptPrefix + s.Echo
		}
		return StatusPromptPrefix + s.Prompt
	case PhaseFailed:
		if s.Kind == notice.KindTransport {
			return StatusTransportFailure
		}
		return StatusFailed
	}
	return ""
}
