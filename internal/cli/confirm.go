package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/studiowebux/text2image/internal/history"
)

// ErrNotInteractive is returned when confirmation is needed but stdin is not a terminal
var ErrNotInteractive = errors.New("confirmation required (non-interactive mode); use --yes")

// PromptConfirmer asks a y/N question on a terminal
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
	// Interactive is false when In is piped; Confirm then refuses to guess
	Interactive bool
}

// Confirm prints question and reads the answer. Anything but y/yes is a no.
func (c *PromptConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	if !c.Interactive {
		return false, ErrNotInteractive
	}
	fmt.Fprintf(c.Out, "%s [y/N]: ", question)

	answer := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(c.In).ReadString('\n')
		answer <- line
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.Out)
		return false, ctx.Err()
	case line := <-answer:
		response := strings.ToLower(strings.TrimSpace(line))
		return response == "y" || response == "yes", nil
	}
}

// Confirmer picks the confirmer for a command: --yes skips the question
func Confirmer(yes bool, in io.Reader, out io.Writer) history.Confirmer {
	if yes {
		return history.AlwaysConfirm
	}
	return &PromptConfirmer{In: in, Out: out, Interactive: IsTerminal(in)}
}
