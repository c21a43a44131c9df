// Package app assembles one text2image session: the API client, the history
// store, the optional journal and the generation controller built on them.
// Both the TUI and the CLI commands receive a Session instead of reaching for
// package-level state.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/text2image/internal/api"
	"github.com/studiowebux/text2image/internal/config"
	"github.com/studiowebux/text2image/internal/generate"
	"github.com/studiowebux/text2image/internal/history"
	"github.com/studiowebux/text2image/internal/journal"
	"github.com/studiowebux/text2image/internal/logging"
	"github.com/studiowebux/text2image/internal/notice"
	"github.com/studiowebux/text2image/internal/types"
	"github.com/studiowebux/text2image/internal/version"
)

// Options configures New
type Options struct {
	Settings *config.Settings
	Logger   *log.Logger
	Notifier notice.Notifier
	// JournalPath is the SQLite file; empty disables the journal
	JournalPath string
}

// Session holds the per-run collaborators
type Session struct {
	Settings   *config.Settings
	Client     *api.Client
	History    *history.Store
	Controller *generate.Controller
	Journal    *journal.Manager
	Notifier   notice.Notifier
	Logger     *log.Logger
}

// New validates settings and wires a session
func New(opts Options) (*Session, error) {
	settings := opts.Settings
	if settings == nil {
		settings = config.Defaults()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notice.Discard
	}

	timeout, err := settings.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	policy, err := generate.ParsePolicy(settings.ResolvePolicy)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.Options{
		BaseURL:   settings.BaseURL,
		Timeout:   timeout,
		TLS:       settings.TLS,
		UserAgent: version.UserAgent(),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Session{
		Settings: settings,
		Client:   client,
		History:  history.NewStore(settings.HistoryLimit, notifier, logger),
		Notifier: notifier,
		Logger:   logger,
	}

	ctrlOpts := generate.Options{
		Client:   client,
		History:  s.History,
		Notifier: notifier,
		Policy:   policy,
		Logger:   logger,
	}

	if opts.JournalPath != "" && settings.JournalEnabled() {
		mgr, err := journal.NewManager(opts.JournalPath)
		if err != nil {
			// the journal is a side log; generation works without it
			logger.Warn("journal unavailable", "path", opts.JournalPath, "err", err)
		} else {
			s.Journal = mgr
			ctrlOpts.Recorder = mgr
		}
	}

	s.Controller = generate.New(ctrlOpts)
	logger.Debug("session ready", "base_url", client.BaseURL(), "policy", policy, "history_limit", s.History.Limit(), "timeout", timeout)
	return s, nil
}

// Close releases the journal
func (s *Session) Close() error {
	if s.Journal == nil {
		return nil
	}
	return s.Journal.Close()
}

// HydrateHistory fetches server history into the store and returns the records
func (s *Session) HydrateHistory(ctx context.Context) ([]types.HistoryRecord, error) {
	records, err := s.Client.FetchHistory(ctx)
	if err != nil {
		s.Logger.Warn("history fetch failed", "err", err)
		return nil, err
	}
	n := s.History.Hydrate(records)
	s.Logger.Debug("history hydrated", "records", len(records), "entries", n)
	return records, nil
}

// FetchStats loads the stats snapshot
func (s *Session) FetchStats(ctx context.Context) (*types.StatsSnapshot, error) {
	stats, err := s.Client.FetchStats(ctx)
	if err != nil {
		s.Logger.Warn("stats fetch failed", "err", err)
		return nil, err
	}
	return stats, nil
}

// Snapshot is the result of the startup fetches. Each half is independent.
type Snapshot struct {
	History    []types.HistoryRecord
	HistoryErr error
	Stats      *types.StatsSnapshot
	StatsErr   error
	Elapsed    time.Duration
}

// Bootstrap runs the history and stats fetches concurrently. A failure in
// one does not cancel the other; both outcomes land in the snapshot.
func (s *Session) Bootstrap(ctx context.Context) *Snapshot {
	snap := &Snapshot{}
	start := time.Now()

	var g errgroup.Group
	g.Go(func() error {
		snap.History, snap.HistoryErr = s.HydrateHistory(ctx)
		return nil
	})
	g.Go(func() error {
		snap.Stats, snap.StatsErr = s.FetchStats(ctx)
		return nil
	})
	_ = g.Wait()

	snap.Elapsed = time.Since(start)
	return snap
}

// Err returns the first fetch error, or nil when both fetches succeeded
func (snap *Snapshot) Err() error {
	if snap.HistoryErr != nil {
		return fmt.Errorf("history: %w", snap.HistoryErr)
	}
	if snap.StatsErr != nil {
		return fmt.Errorf("stats: %w", snap.StatsErr)
	}
	return nil
}
