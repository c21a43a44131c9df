package generate

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/studiowebux/text2image/internal/api"
	"github.com/studiowebux/text2image/internal/history"
	"github.com/studiowebux/text2image/internal/journal"
	"github.com/studiowebux/text2image/internal/notice"
	"github.com/studiowebux/text2image/internal/types"
)

// MsgEmptyPrompt is shown when a blank prompt is submitted
const MsgEmptyPrompt = "Please enter a prompt!"

// ErrEmptyPrompt is returned by Submit for blank prompts
var ErrEmptyPrompt = &api.ValidationError{Field: "prompt", Message: "prompt is empty"}

// Notice titles for failed generations
const (
	TitleGenerationFailed = "Image generation failed"
	TitleNetworkError     = "Network error"
	MsgNetworkError       = "Network error."
)

// Generator performs the generation call
type Generator interface {
	Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error)
}

// Recorder persists resolved attempts
type Recorder interface {
	Save(entry journal.Entry) error
}

// Ticket identifies one accepted request
type Ticket struct {
	Seq       uint64
	Prompt    string
	Origin    types.Origin
	RequestID string
	StartedAt time.Time
}

// Result is what Execute observed
type Result struct {
	Response *types.GenerateResponse
	Err      error
	Duration time.Duration
}

// Options configures a Controller
type Options struct {
	Client   Generator
	History  *history.Store
	Notifier notice.Notifier
	Recorder Recorder
	Policy   Policy
	Logger   *log.Logger
}

// Controller drives the request state machine
type Controller struct {
	mu          sync.RWMutex
	state       State
	lastIssued  uint64
	outstanding int

	client   Generator
	history  *history.Store
	notifier notice.Notifier
	recorder Recorder
	policy   Policy
	logger   *log.Logger
	now      func() time.Time
}

// New creates a controller in the Idle state
func New(opts Options) *Controller {
	c := &Controller{
		client:   opts.Client,
		history:  opts.History,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		policy:   opts.Policy,
		logger:   opts.Logger,
		now:      time.Now,
	}
	if c.notifier == nil {
		c.notifier = notice.Discard
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	if c.history == nil {
		c.history = history.NewStore(history.DefaultLimit, c.notifier, c.logger)
	}
	return c
}

// State returns the visible state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Outstanding is the number of submitted but unresolved requests
func (c *Controller) Outstanding() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.outstanding
}

func (c *Controller) Policy() Policy {
	return c.policy
}

func (c *Controller) History() *history.Store {
	return c.history
}

// Submit validates text and, if accepted, moves to InFlight and returns a
// ticket. A blank prompt leaves the state untouched and emits a notice.
func (c *Controller) Submit(text string, origin types.Origin) (Ticket, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		c.notifier.Notify(notice.Notice{Kind: notice.KindValidation, Message: MsgEmptyPrompt})
		return Ticket{}, ErrEmptyPrompt
	}

	c.mu.Lock()
	c.lastIssued++
	ticket := Ticket{
		Seq:       c.lastIssued,
		Prompt:    prompt,
		Origin:    origin,
		RequestID: uuid.NewString(),
		StartedAt: c.now(),
	}
	c.state = State{Phase: PhaseInFlight, Prompt: prompt, Seq: ticket.Seq}
	c.outstanding++
	c.mu.Unlock()

	c.logger.Debug("generation submitted", "seq", ticket.Seq, "origin", origin, "request_id", ticket.RequestID)
	return ticket, nil
}

// Execute performs the network call for ticket. It does not touch the
// controller state and may run on any goroutine.
func (c *Controller) Execute(ctx context.Context, ticket Ticket) Result {
	start := c.now()
	resp, err := c.client.Generate(ctx, types.GenerateRequest{Prompt: ticket.Prompt, RequestID: ticket.RequestID})
	return Result{Response: resp, Err: err, Duration: c.now().Sub(start)}
}

// Resolve applies result to the controller. It returns the visible state
// afterwards and whether this result changed it.
func (c *Controller) Resolve(ticket Ticket, result Result) (State, bool) {
	next, kind := outcomeState(ticket, result)

	c.mu.Lock()
	if c.outstanding > 0 {
		c.outstanding--
	}
	stale := c.policy == LatestRequest && ticket.Seq < c.lastIssued
	if !stale {
		c.state = next
	}
	current := c.state
	c.mu.Unlock()

	if next.Phase == PhaseSucceeded {
		c.history.RecordSuccess(ticket.Prompt)
	}

	if stale {
		c.logger.Info("stale response ignored", "seq", ticket.Seq, "prompt", ticket.Prompt, "outcome", kind)
	} else if next.Phase == PhaseFailed {
		c.notifier.Notify(failureNotice(next))
	}

	c.record(ticket, result, next, kind, stale)
	return current, !stale
}

// Generate runs Submit, Execute and Resolve in sequence
func (c *Controller) Generate(ctx context.Context, text string, origin types.Origin) (State, error) {
	ticket, err := c.Submit(text, origin)
	if err != nil {
		return c.State(), err
	}
	result := c.Execute(ctx, ticket)
	state, _ := c.Resolve(ticket, result)
	if result.Err != nil {
		return state, result.Err
	}
	if result.Response == nil || result.Response.ImageURL == "" {
		// a reply without an image is a failure even when the call itself succeeded
		return state, &api.MalformedResponseError{
			Status:  http.StatusOK,
			Reason:  "response has no image_url",
			Message: api.UnknownErrorMessage,
		}
	}
	return state, nil
}

func outcomeState(ticket Ticket, result Result) (State, string) {
	if result.Err == nil && result.Response != nil && result.Response.ImageURL != "" {
		return State{
			Phase:    PhaseSucceeded,
			Prompt:   ticket.Prompt,
			Echo:     result.Response.Prompt,
			ImageURL: result.Response.ImageURL,
			Seq:      ticket.Seq,
		}, journal.OutcomeSucceeded
	}

	kind, message := classify(result.Err)
	return State{
		Phase:   PhaseFailed,
		Prompt:  ticket.Prompt,
		Message: message,
		Kind:    kind,
		Seq:     ticket.Seq,
	}, string(kind)
}

// classify maps a generation error to a notice kind and user message
func classify(err error) (notice.Kind, string) {
	var se *api.ServiceError
	var me *api.MalformedResponseError
	var te *api.TransportError

	switch {
	case errors.As(err, &se):
		return notice.KindService, api.ServerMessage(se)
	case errors.As(err, &me):
		return notice.KindMalformed, api.ServerMessage(me)
	case errors.As(err, &te):
		if msg := api.Categorize(te.Err); msg != "" {
			return notice.KindTransport, msg
		}
		return notice.KindTransport, MsgNetworkError
	case err == nil:
		// success reported without an image
		return notice.KindMalformed, api.UnknownErrorMessage
	}
	return notice.KindTransport, MsgNetworkError
}

func failureNotice(s State) notice.Notice {
	title := TitleGenerationFailed
	if s.Kind == notice.KindTransport {
		title = TitleNetworkError
	}
	return notice.Notice{Kind: s.Kind, Title: title, Message: s.Message}
}

func (c *Controller) record(ticket Ticket, result Result, s State, outcome string, stale bool) {
	if c.recorder == nil {
		return
	}

	entry := journal.Entry{
		Prompt:     ticket.Prompt,
		Origin:     string(ticket.Origin),
		Outcome:    outcome,
		ImageURL:   s.ImageURL,
		Message:    s.Message,
		DurationMs: result.Duration.Milliseconds(),
		RequestID:  ticket.RequestID,
		Stale:      stale,
	}
	var se *api.ServiceError
	var me *api.MalformedResponseError
	switch {
	case errors.As(result.Err, &se):
		entry.Status = se.Status
	case errors.As(result.Err, &me):
		entry.Status = me.Status
	}

	if err := c.recorder.Save(entry); err != nil {
		c.logger.Warn("failed to write journal entry", "err", err, "request_id", ticket.RequestID)
	}
}
