package generate

import (
	"context"
	"errors"
	"net"
	"syscall"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/text2image/internal/api"
	"github.com/studiowebux/text2image/internal/history"
	"github.com/studiowebux/text2image/internal/journal"
	"github.com/studiowebux/text2image/internal/notice"
	"github.com/studiowebux/text2image/internal/types"
)

type reply struct {
	resp *types.GenerateResponse
	err  error
}

// fakeGenerator answers by prompt and counts calls
type fakeGenerator struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   []types.GenerateRequest
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{replies: make(map[string][]reply)}
}

func (f *fakeGenerator) on(prompt string, r reply) *fakeGenerator {
	f.replies[prompt] = append(f.replies[prompt], r)
	return f
}

func (f *fakeGenerator) Generate(_ context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	queue := f.replies[req.Prompt]
	if len(queue) == 0 {
		return nil, &api.ServiceError{Status: 500}
	}
	r := queue[0]
	f.replies[req.Prompt] = queue[1:]
	return r.resp, r.err
}

func ok(prompt, url string) reply {
	return reply{resp: &types.GenerateResponse{Prompt: prompt, ImageURL: url}}
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []journal.Entry
	err     error
}

func (f *fakeRecorder) Save(e journal.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return f.err
}

type fixture struct {
	ctl      *Controller
	gen      *fakeGenerator
	notices  *notice.Recorder
	recorder *fakeRecorder
}

func newFixture(policy Policy) *fixture {
	gen := newFakeGenerator()
	notices := &notice.Recorder{}
	recorder := &fakeRecorder{}
	ctl := New(Options{
		Client:   gen,
		History:  history.NewStore(history.DefaultLimit, notices, nil),
		Notifier: notices,
		Recorder: recorder,
		Policy:   policy,
	})
	return &fixture{ctl: ctl, gen: gen, notices: notices, recorder: recorder}
}

func TestEmptyPromptIsRejectedLocally(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		f := newFixture(LastResolved)

		_, err := f.ctl.Submit(text, types.OriginInput)
		assert.ErrorIs(t, err, ErrEmptyPrompt)

		state, err := f.ctl.Generate(context.Background(), text, types.OriginCLI)
		var ve *api.ValidationError
		assert.True(t, errors.As(err, &ve))

		assert.Equal(t, PhaseIdle, state.Phase)
		assert.Empty(t, f.gen.calls)
		assert.Zero(t, f.ctl.Outstanding())

		notices := f.notices.All()
		require.Len(t, notices, 2)
		assert.Equal(t, notice.KindValidation, notices[0].Kind)
		assert.Equal(t, MsgEmptyPrompt, notices[0].Message)
	}
}

func TestSubmitMovesToInFlight(t *testing.T) {
	f := newFixture(LastResolved)

	ticket, err := f.ctl.Submit("  A cat  ", types.OriginTemplate)
	require.NoError(t, err)
	assert.Equal(t, "A cat", ticket.Prompt)
	assert.Equal(t, uint64(1), ticket.Seq)
	assert.NotEmpty(t, ticket.RequestID)

	state := f.ctl.State()
	assert.Equal(t, PhaseInFlight, state.Phase)
	assert.True(t, state.Loading())
	assert.Equal(t, StatusGenerating, state.StatusText())
	assert.Equal(t, 1, f.ctl.Outstanding())
}

func TestSuccessRecordsHistory(t *testing.T) {
	f := newFixture(LastResolved)
	f.gen.on("A cat", ok("A cat", "/img/1.png"))

	state, err := f.ctl.Generate(context.Background(), "A cat", types.OriginInput)
	require.NoError(t, err)
	assert.Equal(t, PhaseSucceeded, state.Phase)
	assert.Equal(t, "/img/1.png", state.ImageURL)
	assert.True(t, state.HasImage())
	assert.False(t, state.Loading())
	assert.Equal(t, "Prompt: A cat", state.StatusText())
	assert.Equal(t, []string{"A cat"}, f.ctl.History().Entries())
	assert.Empty(t, f.notices.All())

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, journal.OutcomeSucceeded, f.recorder.entries[0].Outcome)
	assert.Equal(t, "input", f.recorder.entries[0].Origin)
	assert.Equal(t, f.gen.calls[0].RequestID, f.recorder.entries[0].RequestID)
}

func TestRepeatedPromptUpdatesImageNotHistory(t *testing.T) {
	f := newFixture(LastResolved)
	f.gen.on("A cat", ok("A cat", "/img/1.png")).on("A cat", ok("A cat", "/img/2.png"))

	_, err := f.ctl.Generate(context.Background(), "A cat", types.OriginInput)
	require.NoError(t, err)
	state, err := f.ctl.Generate(context.Background(), "A cat", types.OriginHistory)
	require.NoError(t, err)

	assert.Equal(t, "/img/2.png", state.ImageURL)
	assert.Equal(t, []string{"A cat"}, f.ctl.History().Entries())
}

func TestServiceErrorMessage(t *testing.T) {
	f := newFixture(LastResolved)
	f.gen.on("x", ok("x", "/img/x.png"))
	f.gen.on("bad", reply{err: &api.ServiceError{Status: 400, Message: "bad prompt"}})

	_, err := f.ctl.Generate(context.Background(), "x", types.OriginInput)
	require.NoError(t, err)

	state, err := f.ctl.Generate(context.Background(), "bad", types.OriginInput)
	require.Error(t, err)
	assert.Equal(t, PhaseFailed, state.Phase)
	assert.Equal(t, "bad prompt", state.Message)
	assert.Equal(t, StatusFailed, state.StatusText())
	assert.False(t, state.HasImage())
	assert.Equal(t, []string{"x"}, f.ctl.History().Entries())

	notices := f.notices.All()
	require.Len(t, notices, 1)
	assert.Equal(t, notice.KindService, notices[0].Kind)
	assert.Equal(t, "Image generation failed:\nbad prompt", notices[0].Text())

	last := f.recorder.entries[len(f.recorder.entries)-1]
	assert.Equal(t, journal.OutcomeService, last.Outcome)
	assert.Equal(t, 400, last.Status)
}

func TestFailureKinds(t *testing.T) {
	tests := []struct {
		name    string
		reply   reply
		kind    notice.Kind
		message string
		status  string
		title   string
	}{
		{
			name:    "service without message",
			reply:   reply{err: &api.ServiceError{Status: 500}},
			kind:    notice.KindService,
			message: api.UnknownErrorMessage,
			status:  StatusFailed,
			title:   TitleGenerationFailed,
		},
		{
			name:    "malformed missing image",
			reply:   reply{err: &api.MalformedResponseError{Status: 200, Reason: "missing image_url"}},
			kind:    notice.KindMalformed,
			message: api.UnknownErrorMessage,
			status:  StatusFailed,
			title:   TitleGenerationFailed,
		},
		{
			name:    "nil response",
			reply:   reply{},
			kind:    notice.KindMalformed,
			message: api.UnknownErrorMessage,
			status:  StatusFailed,
			title:   TitleGenerationFailed,
		},
		{
			name: "transport refused",
			reply: reply{err: &api.TransportError{Op: "generate", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED,
			}}},
			kind:    notice.KindTransport,
			message: api.Categorize(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}),
			status:  StatusTransportFailure,
			title:   TitleNetworkError,
		},
		{
			name:    "transport without cause",
			reply:   reply{err: &api.TransportError{Op: "generate"}},
			kind:    notice.KindTransport,
			message: MsgNetworkError,
			status:  StatusTransportFailure,
			title:   TitleNetworkError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(LastResolved)
			f.gen.on("p", tt.reply)

			state, _ := f.ctl.Generate(context.Background(), "p", types.OriginCLI)
			assert.Equal(t, PhaseFailed, state.Phase)
			assert.Equal(t, tt.kind, state.Kind)
			assert.Equal(t, tt.message, state.Message)
			assert.Equal(t, tt.status, state.StatusText())
			assert.Zero(t, f.ctl.History().Len())

			notices := f.notices.All()
			require.Len(t, notices, 1)
			assert.Equal(t, tt.kind, notices[0].Kind)
			assert.Equal(t, tt.title, notices[0].Title)
		})
	}
}

// interleave issues X then Y, resolves Y first and X last
func interleave(t *testing.T, f *fixture) State {
	t.Helper()
	f.gen.on("X", ok("X", "/img/x.png")).on("Y", ok("Y", "/img/y.png"))

	x, err := f.ctl.Submit("X", types.OriginInput)
	require.NoError(t, err)
	y, err := f.ctl.Submit("Y", types.OriginInput)
	require.NoError(t, err)
	assert.Equal(t, 2, f.ctl.Outstanding())

	xResult := f.ctl.Execute(context.Background(), x)
	yResult := f.ctl.Execute(context.Background(), y)

	_, applied := f.ctl.Resolve(y, yResult)
	assert.True(t, applied)
	state, _ := f.ctl.Resolve(x, xResult)
	assert.Zero(t, f.ctl.Outstanding())
	return state
}

func TestLastResolvedWins(t *testing.T) {
	f := newFixture(LastResolved)
	state := interleave(t, f)

	assert.Equal(t, "X", state.Prompt)
	assert.Equal(t, "/img/x.png", state.ImageURL)
	assert.Equal(t, []string{"X", "Y"}, f.ctl.History().Entries())
}

func TestLatestRequestIgnoresStaleResponse(t *testing.T) {
	f := newFixture(LatestRequest)
	state := interleave(t, f)

	assert.Equal(t, "Y", state.Prompt)
	assert.Equal(t, "/img/y.png", state.ImageURL)
	assert.Equal(t, []string{"X", "Y"}, f.ctl.History().Entries())

	require.Len(t, f.recorder.entries, 2)
	assert.False(t, f.recorder.entries[0].Stale)
	assert.True(t, f.recorder.entries[1].Stale)
}

func TestLatestRequestStaleFailureIsSilent(t *testing.T) {
	f := newFixture(LatestRequest)
	f.gen.on("X", reply{err: &api.ServiceError{Status: 500, Message: "boom"}}).on("Y", ok("Y", "/img/y.png"))

	x, _ := f.ctl.Submit("X", types.OriginInput)
	y, _ := f.ctl.Submit("Y", types.OriginInput)
	f.ctl.Resolve(y, f.ctl.Execute(context.Background(), y))
	state, applied := f.ctl.Resolve(x, f.ctl.Execute(context.Background(), x))

	assert.False(t, applied)
	assert.Equal(t, PhaseSucceeded, state.Phase)
	assert.Empty(t, f.notices.All())
}

func TestRecorderErrorDoesNotFailGeneration(t *testing.T) {
	f := newFixture(LastResolved)
	f.recorder.err = errors.New("disk full")
	f.gen.on("a", ok("a", "/img/a.png"))

	state, err := f.ctl.Generate(context.Background(), "a", types.OriginCLI)
	require.NoError(t, err)
	assert.Equal(t, PhaseSucceeded, state.Phase)
}

func TestConcurrentGenerate(t *testing.T) {
	f := newFixture(LastResolved)
	prompts := []string{"a", "b", "c", "d"}
	for _, p := range prompts {
		f.gen.on(p, ok(p, "/img/"+p+".png"))
	}

	var wg sync.WaitGroup
	for _, p := range prompts {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			_, _ = f.ctl.Generate(context.Background(), p, types.OriginCLI)
		}(p)
	}
	wg.Wait()

	assert.ElementsMatch(t, prompts, f.ctl.History().Entries())
	assert.Equal(t, PhaseSucceeded, f.ctl.State().Phase)
	assert.Zero(t, f.ctl.Outstanding())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", LastResolved, false},
		{"last-resolved", LastResolved, false},
		{"latest-request", LatestRequest, false},
		{"newest", LastResolved, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantErr, err != nil, tt.in)
	}
	assert.Equal(t, "latest-request", LatestRequest.String())
}

func TestStatusTextUsesServerEcho(t *testing.T) {
	s := State{Phase: PhaseSucceeded, Prompt: "a cat", Echo: "A cat"}
	assert.Equal(t, "Prompt: A cat", s.StatusText())
	assert.Equal(t, "", State{}.StatusText())
	assert.Equal(t, "idle", PhaseIdle.String())
}

func TestTemplates(t *testing.T) {
	assert.Len(t, Templates, 5)
	assert.Contains(t, Templates, "An astronaut riding a horse on Mars")
}

func TestGenerateReportsReplyWithoutImage(t *testing.T) {
	for _, r := range []reply{
		{resp: &types.GenerateResponse{Prompt: "A cat"}},
		{},
	} {
		f := newFixture(LastResolved)
		f.gen.on("A cat", r)

		state, err := f.ctl.Generate(context.Background(), "A cat", types.OriginCLI)

		var me *api.MalformedResponseError
		require.True(t, errors.As(err, &me), "got %v", err)
		assert.Equal(t, api.UnknownErrorMessage, api.ServerMessage(me))
		assert.Equal(t, PhaseFailed, state.Phase)
		assert.Empty(t, f.ctl.History().Entries())

		notices := f.notices.All()
		require.Len(t, notices, 1)
		assert.Equal(t, notice.KindMalformed, notices[0].Kind)
	}
}
