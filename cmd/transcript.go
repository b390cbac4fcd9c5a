// File: cmd/transcript.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/config"
	"github.com/xkilldash9x/webpilot/internal/conversation"
	"github.com/xkilldash9x/webpilot/internal/observability"
	"github.com/xkilldash9x/webpilot/internal/service"
)

// archiveProvider opens the transcript archive. Tests inject a mock store.
type archiveProvider interface {
	// Create returns the store and a cleanup func releasing its connections.
	Create(ctx context.Context, cfg config.Interface) (schemas.TranscriptStore, func(), error)
}

type defaultArchiveProvider struct{}

// NewArchiveProvider returns the provider backed by PostgreSQL.
func NewArchiveProvider() archiveProvider {
	return &defaultArchiveProvider{}
}

func (p *defaultArchiveProvider) Create(ctx context.Context, cfg config.Interface) (schemas.TranscriptStore, func(), error) {
	logger := observability.GetLogger()
	s, closer, err := service.InitializeArchive(ctx, cfg.Archive(), logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = closer.Close()
		logger.Debug("Database connection pool closed (via transcript cleanup).")
	}
	return s, cleanup, nil
}

func newTranscriptCmd(provider archiveProvider) *cobra.Command {
	var outputPath string

	transcriptCmd := &cobra.Command{
		Use:   "transcript <run-id>",
		Short: "Exports an archived run transcript as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runTranscript(ctx, observability.GetLogger(), cmd.OutOrStdout(), cfg, args[0], outputPath, provider)
		},
	}

	transcriptCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path. If unset, the transcript is printed to stdout.")
	return transcriptCmd
}

func runTranscript(
	ctx context.Context,
	logger *zap.Logger,
	stdout io.Writer,
	cfg config.Interface,
	runID, outputPath string,
	provider archiveProvider,
) error {
	archive, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize archive: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	entries, err := archive.GetTranscript(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no transcript found for run %q", runID)
	}

	if outputPath == "" {
		return conversation.ExportJSON(stdout, entries)
	}

	path, err := homedir.Expand(outputPath)
	if err != nil {
		return fmt.Errorf("failed to expand output path: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	if err := conversation.ExportJSON(f, entries); err != nil {
		return err
	}
	logger.Info("Transcript written to file", zap.String("run_id", runID), zap.String("path", path))
	return nil
}
