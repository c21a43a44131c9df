// Package cli implements the non-interactive text2image commands on top of
// an app.Session.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/studiowebux/text2image/internal/api"
	"github.com/studiowebux/text2image/internal/app"
	"github.com/studiowebux/text2image/internal/executor"
	"github.com/studiowebux/text2image/internal/generate"
	"github.com/studiowebux/text2image/internal/history"
	"github.com/studiowebux/text2image/internal/journal"
	"github.com/studiowebux/text2image/internal/types"
	"github.com/studiowebux/text2image/internal/version"
)

// ErrReported signals a failure whose message was already shown to the user.
// The caller exits non-zero without printing it again.
var ErrReported = errors.New("failure already reported")

// Env is what every command needs
type Env struct {
	Session *app.Session
	Printer *Printer
	In      io.Reader
	ErrOut  io.Writer
}

// GenerateOutput is the structured result of the generate command
type GenerateOutput struct {
	Prompt   string `json:"prompt" yaml:"prompt"`
	ImageURL string `json:"image_url" yaml:"image_url"`
	URL      string `json:"url" yaml:"url"`
	Saved    string `json:"saved,omitempty" yaml:"saved,omitempty"`
}

// Generate runs one generation and prints the absolute image URL.
// When save is non-empty the image is downloaded there as well.
func Generate(ctx context.Context, env *Env, prompt string, origin types.Origin, save string) error {
	s := env.Session
	state, err := s.Controller.Generate(ctx, prompt, origin)
	if err != nil {
		// the controller has already notified
		return ErrReported
	}

	url, err := s.Client.ResolveURL(state.ImageURL)
	if err != nil {
		return err
	}
	out := GenerateOutput{Prompt: state.Echo, ImageURL: state.ImageURL, URL: url}
	if out.Prompt == "" {
		out.Prompt = state.Prompt
	}

	if save != "" {
		dest, err := resolveDest(s, save, api.ImageFilename)
		if err != nil {
			return err
		}
		if _, err := s.Client.DownloadImage(ctx, state.ImageURL, dest); err != nil {
			return fmt.Errorf("failed to save image: %w", err)
		}
		out.Saved = dest
	}

	return env.Printer.Print(out, func(w io.Writer) {
		fmt.Fprintln(w, state.StatusText())
		fmt.Fprintln(w, url)
		if out.Saved != "" {
			fmt.Fprintf(w, "Saved to %s\n", out.Saved)
		}
	})
}

// HistoryList prints the hydrated history, most recent first
func HistoryList(ctx context.Context, env *Env) error {
	if _, err := env.Session.HydrateHistory(ctx); err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	entries := env.Session.History.Entries()

	return env.Printer.Print(entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No history.")
			return
		}
		for i, e := range entries {
			fmt.Fprintf(w, "%2d. %s\n", i+1, e)
		}
	})
}

// HistoryClear asks for confirmation, then clears the server history
func HistoryClear(ctx context.Context, env *Env, confirmer history.Confirmer) error {
	outcome, err := env.Session.History.Clear(ctx, confirmer, env.Session.Client)
	switch {
	case errors.Is(err, ErrNotInteractive):
		return err
	case outcome == history.ClearFailed:
		return ErrReported
	case err != nil:
		return err
	}
	if outcome == history.ClearDeclined {
		fmt.Fprintln(env.ErrOut, "Cancelled.")
	}
	return nil
}

// Stats prints the stats snapshot
func Stats(ctx context.Context, env *Env) error {
	stats, err := env.Session.FetchStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return env.Printer.Print(stats, func(w io.Writer) {
		writeStats(w, stats)
	})
}

func writeStats(w io.Writer, stats *types.StatsSnapshot) {
	fmt.Fprintf(w, "Total generations: %d\n", stats.Total)
	fmt.Fprintln(w, "Top prompts:")
	for _, p := range stats.TopPrompts {
		fmt.Fprintf(w, "  %s (%d)\n", p.Prompt, p.Count)
	}
	fmt.Fprintln(w, "Recent:")
	for _, r := range stats.Recent {
		fmt.Fprintf(w, "  %s — %s\n", r.Prompt, r.Timestamp)
	}
}

// StatusOutput is the structured result of the status command
type StatusOutput struct {
	BaseURL      string               `json:"base_url" yaml:"base_url"`
	History      []string             `json:"history" yaml:"history"`
	HistoryError string               `json:"history_error,omitempty" yaml:"history_error,omitempty"`
	Stats        *types.StatsSnapshot `json:"stats,omitempty" yaml:"stats,omitempty"`
	StatsError   string               `json:"stats_error,omitempty" yaml:"stats_error,omitempty"`
	ElapsedMs    int64                `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// Status fetches history and stats concurrently and prints both. It fails
// only when neither fetch succeeded.
func Status(ctx context.Context, env *Env) error {
	s := env.Session
	snap := s.Bootstrap(ctx)

	out := StatusOutput{
		BaseURL:   s.Client.BaseURL(),
		History:   s.History.Entries(),
		Stats:     snap.Stats,
		ElapsedMs: snap.Elapsed.Milliseconds(),
	}
	if snap.HistoryErr != nil {
		out.HistoryError = summarize(snap.HistoryErr)
	}
	if snap.StatsErr != nil {
		out.StatsError = summarize(snap.StatsErr)
	}

	err := env.Printer.Print(out, func(w io.Writer) {
		fmt.Fprintf(w, "Service: %s (%s)\n\n", out.BaseURL, executor.FormatDuration(out.ElapsedMs))
		fmt.Fprintln(w, "History:")
		if out.HistoryError != "" {
			fmt.Fprintf(w, "  unavailable: %s\n", out.HistoryError)
		} else if len(out.History) == 0 {
			fmt.Fprintln(w, "  (empty)")
		}
		for i, e := range out.History {
			fmt.Fprintf(w, "  %2d. %s\n", i+1, e)
		}
		fmt.Fprintln(w)
		if out.StatsError != "" {
			fmt.Fprintf(w, "Stats unavailable: %s\n", out.StatsError)
			return
		}
		writeStats(w, out.Stats)
	})
	if err != nil {
		return err
	}
	if snap.HistoryErr != nil && snap.StatsErr != nil {
		return snap.Err()
	}
	return nil
}

// summarize turns a fetch error into one line of user-facing text
func summarize(err error) string {
	var te *api.TransportError
	if errors.As(err, &te) {
		if msg := api.Categorize(te.Err); msg != "" {
			return msg
		}
		return generate.MsgNetworkError
	}
	return api.ServerMessage(err)
}

// Download saves the image at ref (relative or absolute URL)
func Download(ctx context.Context, env *Env, ref, dest string) error {
	s := env.Session
	path, err := resolveDest(s, dest, api.ImageFilename)
	if err != nil {
		return err
	}
	n, err := s.Client.DownloadImage(ctx, ref, path)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	fmt.Fprintf(env.ErrOut, "Saved %s (%s)\n", path, executor.FormatSize(int(n)))
	return nil
}

// DownloadAll saves the bulk archive
func DownloadAll(ctx context.Context, env *Env, dest string) error {
	s := env.Session
	path, err := resolveDest(s, dest, api.ArchiveFilename)
	if err != nil {
		return err
	}
	n, err := s.Client.DownloadAll(ctx, path)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	fmt.Fprintf(env.ErrOut, "Saved %s (%s)\n", path, executor.FormatSize(int(n)))
	return nil
}

// resolveDest picks the output path: an explicit dest wins, otherwise the
// default name inside download_dir
func resolveDest(s *app.Session, dest, name string) (string, error) {
	if dest != "" {
		return dest, nil
	}
	return s.Settings.DownloadPath(name)
}

// JournalList prints the newest journal entries
func JournalList(env *Env, mgr *journal.Manager, limit int) error {
	entries, err := mgr.Load(limit)
	if err != nil {
		return err
	}
	return env.Printer.Print(entries, func(w io.Writer) {
		if len(entries) == 0 {
			fmt.Fprintln(w, "Journal is empty.")
			return
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s  %-9s  %-8s  %s", e.Timestamp, e.Outcome, e.Origin, e.Prompt)
			switch {
			case e.ImageURL != "":
				line += "  " + e.ImageURL
			case e.Message != "":
				line += "  (" + e.Message + ")"
			}
			if e.Stale {
				line += "  [stale]"
			}
			fmt.Fprintln(w, line)
		}
	})
}

// JournalClear empties the journal after confirmation
func JournalClear(ctx context.Context, env *Env, mgr *journal.Manager, confirmer history.Confirmer) error {
	count, err := mgr.GetCount()
	if err != nil {
		return err
	}
	ok, err := confirmer.Confirm(ctx, fmt.Sprintf("Delete %d journal entries?", count))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(env.ErrOut, "Cancelled.")
		return nil
	}
	if err := mgr.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(env.ErrOut, "Journal cleared.")
	return nil
}

// Version prints the version and, with check, whether a newer release exists
func Version(ctx context.Context, w io.Writer, checker *version.Checker) error {
	fmt.Fprintf(w, "text2image %s\n", version.Current)
	if checker == nil {
		return nil
	}

	update, err := checker.Check(ctx, version.Current)
	if err != nil {
		return fmt.Errorf("version check failed: %w", err)
	}
	if update.Available {
		fmt.Fprintf(w, "A newer version is available: %s\n%s\n", update.Latest, update.URL)
	} else {
		fmt.Fprintln(w, "You are running the latest version.")
	}
	return nil
}

// ReadPrompt joins args into one prompt; with no args it reads a piped stdin
func ReadPrompt(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if in == nil || IsTerminal(in) {
		return "", nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// PickOrigin reports the origin for a prompt picked from templates
func PickOrigin(fromTemplate bool) types.Origin {
	if fromTemplate {
		return types.OriginTemplate
	}
	return types.OriginCLI
}

// Templates is the template prompt list offered by the picker
func Templates() []string {
	return generate.Templates
}
