package history

import (
	"context"
	"fmt"

	"github.com/studiowebux/text2image/internal/api"
	"github.com/studiowebux/text2image/internal/notice"
)

// ClearQuestion is asked before any history is cleared
const ClearQuestion = "Are you sure you want to clear history?"

// Clear notice texts
const (
	MsgCleared        = "History cleared."
	MsgClearFailed    = "Failed to clear history."
	MsgClearTransport = "Network error while clearing history."
)

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// AlwaysConfirm answers yes without asking
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// Remote clears the server-side history
type Remote interface {
	ClearHistory(ctx context.Context) error
}

// ClearOutcome is the result of a clear attempt
type ClearOutcome int

const (
	ClearDeclined ClearOutcome = iota
	ClearSucceeded
	ClearFailed
)

func (o ClearOutcome) String() string {
	switch o {
	case ClearDeclined:
		return "declined"
	case ClearSucceeded:
		return "succeeded"
	case ClearFailed:
		return "failed"
	}
	return "unknown"
}

// Clear asks for confirmation, then clears the server history and, only if
// that succeeded, the local list.
func (s *Store) Clear(ctx context.Context, confirmer Confirmer, remote Remote) (ClearOutcome, error) {
	ok, err := confirmer.Confirm(ctx, ClearQuestion)
	if err != nil {
		return ClearDeclined, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		s.logger.Debug("history clear declined")
		return ClearDeclined, nil
	}
	return s.CompleteClear(remote.ClearHistory(ctx))
}

// CompleteClear applies the server's answer to a confirmed clear
func (s *Store) CompleteClear(err error) (ClearOutcome, error) {
	if err != nil {
		msg := MsgClearFailed
		if api.IsTransport(err) {
			msg = MsgClearTransport
		}
		s.logger.Warn("history clear failed", "err", err)
		s.notifier.Notify(notice.Notice{Kind: notice.KindClearFailed, Message: msg})
		return ClearFailed, err
	}

	s.reset()
	s.logger.Info("history cleared")
	s.notifier.Notify(notice.Notice{Kind: notice.KindClearSucceeded, Message: MsgCleared})
	return ClearSucceeded, nil
}
