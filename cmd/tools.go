// File: cmd/tools.go
package cmd

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/webpilot/api/schemas"
	"github.com/xkilldash9x/webpilot/internal/action"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type toolJSON struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

func newToolsCmd() *cobra.Command {
	var vocabulary string
	var width, height int

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Prints the tool descriptors advertised to tool-calling models.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("vocabulary") {
				vocabulary = cfg.Agent().Vocabulary
			}
			vp := schemas.Viewport{Width: cfg.Browser().ViewportWidth, Height: cfg.Browser().ViewportHeight}
			if cmd.Flags().Changed("width") {
				vp.Width = width
			}
			if cmd.Flags().Changed("height") {
				vp.Height = height
			}
			return printTools(cmd.OutOrStdout(), vocabulary, vp)
		},
	}

	toolsCmd.Flags().StringVar(&vocabulary, "vocabulary", "", "vocabulary to describe (defaults to agent.vocabulary)")
	toolsCmd.Flags().IntVar(&width, "width", 0, "viewport width reported to the model")
	toolsCmd.Flags().IntVar(&height, "height", 0, "viewport height reported to the model")
	return toolsCmd
}

func printTools(out io.Writer, vocabulary string, vp schemas.Viewport) error {
	v, err := action.ParseVocabulary(vocabulary)
	if err != nil {
		return err
	}
	if !vp.Valid() {
		return fmt.Errorf("invalid viewport %dx%d", vp.Width, vp.Height)
	}

	descriptors := action.Tools(v, vp)
	tools := make([]toolJSON, 0, len(descriptors))
	for _, d := range descriptors {
		tools = append(tools, toolJSON{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema()})
	}
	data, err := json.MarshalIndent(tools, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize tools: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
