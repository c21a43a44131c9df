package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/studiowebux/text2image/internal/mock"
)

// RunMock serves the in-memory backend until ctx is cancelled
func RunMock(ctx context.Context, w io.Writer, config *mock.Config, logger *log.Logger) error {
	server, err := mock.NewServer(config, logger)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Mock backend listening on %s (ctrl+c to stop)\n", server.Address())
	<-ctx.Done()

	if err := server.Stop(); err != nil {
		return fmt.Errorf("failed to stop mock backend: %w", err)
	}
	logger.Info("mock backend stopped", "images", server.ImageCount(), "history", len(server.History()))
	return nil
}
