// File: cmd/run.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/webpilot/internal/config"
	"github.com/xkilldash9x/webpilot/internal/observability"
	"github.com/xkilldash9x/webpilot/internal/service"
)

// componentFactory builds the run components; tests replace it.
var componentFactory = service.NewComponentFactory

type runFlags struct {
	mode       string
	vocabulary string
	model      string
	startURL   string
	maxTurns   int
	headed     bool
	strict     bool
}

func newRunCmd() *cobra.Command {
	var flags runFlags
	runCmd := &cobra.Command{
		Use:   "run [instruction...]",
		Short: "Runs the agent against a browser until the task is done.",
		Long: `Starts a browser session and lets the configured model drive it until the model
finishes, asks for the user, or the turn limit is reached. The transcript is
archived and exported when configured.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg, flags)
			return runAgent(cmd.Context(), cmd.OutOrStdout(), cfg, strings.Join(args, " "), componentFactory())
		},
	}

	runCmd.Flags().StringVar(&flags.mode, "mode", "", "agent loop: dsl or tools")
	runCmd.Flags().StringVar(&flags.vocabulary, "vocabulary", "", "tool vocabulary for tools mode (computer_20241022 or computer_20250124)")
	runCmd.Flags().StringVar(&flags.model, "model", "", "model name, overriding llm.model")
	runCmd.Flags().StringVar(&flags.startURL, "start-url", "", "page to open before the first turn")
	runCmd.Flags().IntVar(&flags.maxTurns, "max-turns", 0, "maximum model round-trips (0 for unlimited)")
	runCmd.Flags().BoolVar(&flags.headed, "headed", false, "show the browser window")
	runCmd.Flags().BoolVar(&flags.strict, "strict", false, "treat malformed action lines as fatal")
	return runCmd
}

// applyRunFlags overrides configuration with the flags the user actually set.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, flags runFlags) {
	if cmd.Flags().Changed("mode") {
		cfg.SetAgentMode(config.Mode(flags.mode))
	}
	if cmd.Flags().Changed("vocabulary") {
		cfg.SetAgentVocabulary(flags.vocabulary)
	}
	if cmd.Flags().Changed("model") {
		cfg.SetLLMModel(flags.model)
	}
	if cmd.Flags().Changed("start-url") {
		cfg.SetBrowserStartURL(flags.startURL)
	}
	if cmd.Flags().Changed("max-turns") {
		cfg.SetAgentMaxTurns(flags.maxTurns)
	}
	if cmd.Flags().Changed("headed") {
		cfg.SetBrowserHeadless(!flags.headed)
	}
	if cmd.Flags().Changed("strict") {
		cfg.AgentCfg.StrictParse = flags.strict
	}
}

// runAgent builds the components, runs one instruction and prints a summary.
func runAgent(ctx context.Context, out io.Writer, cfg config.Interface, instruction string, factory service.ComponentFactory) error {
	logger := observability.GetLogger()

	components, err := factory.Create(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Shutdown()

	logger.Info("Starting run.",
		zap.String("mode", string(cfg.Agent().Mode)),
		zap.String("model", cfg.LLM().Model))

	report, runErr := components.Run(ctx, instruction)
	if report != nil && report.Result != nil {
		printReport(out, report)
	}
	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}

func printReport(out io.Writer, report *service.RunReport) {
	res := report.Result
	fmt.Fprintf(out, "Outcome:    %s\n", res.Outcome)
	fmt.Fprintf(out, "Turns:      %d\n", res.Turns)
	fmt.Fprintf(out, "Run ID:     %s\n", report.ID)
	if report.ExportPath != "" {
		fmt.Fprintf(out, "Transcript: %s\n", report.ExportPath)
	}
	if res.Content != "" {
		fmt.Fprintf(out, "\n%s\n", res.Content)
	}
}
