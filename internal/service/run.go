// File: internal/service/run.go
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/agent"
	"github.com/xkilldash9x/webpilot/internal/conversation"
)

// RunReport summarizes one run.
type RunReport struct {
	ID     string
	Result *agent.Result
	// ExportPath is where the full transcript was written, if anywhere.
	ExportPath string
}

// Run executes the configured loop and then archives and exports the
// unpruned transcript. Archival failures are logged, not returned.
func (c *Components) Run(ctx context.Context, instruction string) (*RunReport, error) {
	if c.Runner == nil {
		return nil, errors.New("components have no agent loop")
	}
	report := &RunReport{ID: uuid.NewString()}
	logger := c.log().With(zap.String("run_id", report.ID))
	started := time.Now()

	res, runErr := c.Runner.Run(ctx, instruction)
	report.Result = res
	if res == nil {
		return report, runErr
	}

	// Persist with a fresh context so a canceled run is still recorded.
	persistCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries := c.Window.Export()
	if c.Store != nil {
		record := schemas.RunRecord{
			ID:          report.ID,
			Instruction: instruction,
			Mode:        c.Mode,
			Model:       c.Model,
			Outcome:     string(res.Outcome),
			StartedAt:   started,
			FinishedAt:  time.Now(),
		}
		if err := c.Store.SaveTranscript(persistCtx, record, entries); err != nil {
			logger.Error("Failed to archive transcript.", zap.Error(err))
		}
	}

	if c.ExportDir != "" {
		path, err := exportTranscript(c.ExportDir, report.ID, entries)
		if err != nil {
			logger.Error("Failed to export transcript.", zap.Error(err))
		} else {
			report.ExportPath = path
			logger.Info("Transcript exported.", zap.String("path", path))
		}
	}

	return report, runErr
}

func exportTranscript(dir, runID string, entries []schemas.Entry) (string, error) {
	dir, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("failed to expand export directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, runID+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := conversation.ExportJSON(f, entries); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}
