// File: cmd/parse.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/action"
	"github.com/xkilldash9x/webpilot/internal/dsl"
)

type parsedAction struct {
	Signature map[string]any `json:"signature"`
	Kind      action.Kind    `json:"kind"`
	Terminal  bool           `json:"terminal"`
	Action    action.Action  `json:"action"`
}

func newParseCmd() *cobra.Command {
	var width, height int

	parseCmd := &cobra.Command{
		Use:   "parse [message]",
		Short: "Parses a model reply and prints the action it maps to.",
		Long: `Reads a model reply from the arguments, or from stdin when none are given,
finds its "Action:" line and prints the parsed call and the resulting action
with coordinates scaled to the given viewport. Nothing is executed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			msg := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read message: %w", err)
				}
				msg = string(data)
			}

			vp := schemas.Viewport{Width: cfg.Browser().ViewportWidth, Height: cfg.Browser().ViewportHeight}
			if cmd.Flags().Changed("width") {
				vp.Width = width
			}
			if cmd.Flags().Changed("height") {
				vp.Height = height
			}
			conv := dsl.NewConverter(action.NewScaler(action.FixedViewport(vp)), cfg.Agent().DSLScrollStep, cfg.Agent().DSLWaitUnits)
			return parseReply(cmd.Context(), cmd.OutOrStdout(), conv, msg)
		},
	}

	parseCmd.Flags().IntVar(&width, "width", 0, "viewport width used for scaling")
	parseCmd.Flags().IntVar(&height, "height", 0, "viewport height used for scaling")
	return parseCmd
}

func parseReply(ctx context.Context, out io.Writer, conv *dsl.Converter, msg string) error {
	sig, err := dsl.ParseMessage(msg)
	if err != nil {
		return err
	}
	act, err := conv.ToAction(ctx, sig)
	if err != nil {
		return fmt.Errorf("%s: %w", action.CodeOf(err), err)
	}

	data, err := json.MarshalIndent(parsedAction{
		Signature: sig.ToMap(),
		Kind:      act.Kind(),
		Terminal:  act.Terminal(),
		Action:    act,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize action: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
