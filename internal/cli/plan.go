package cli

import (
	"context"

	"resumepdf/internal/common"
	"resumepdf/internal/render"
	"resumepdf/internal/types"

	"github.com/spf13/cobra"
)

func newPlanCommand() *cobra.Command {
	var cmdConfig common.CommandConfig
	var style string

	cmd := &cobra.Command{
		Use:   "plan <input>",
		Short: "Print the layout plan for a resume without rendering it",
		Long: `Print the sections, rows and paragraphs that render would lay out, in
the order they would appear. Useful for checking what a document produces
before generating the PDF.`,
		Args: exactArgs(1, "an input document is required"),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return checkFormat(cmd, &cmdConfig)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfigFromContext(cmd.Context())
			logger := getLoggerFromContext(cmd.Context())

			renderer, err := newRenderer(cfg, logger)
			if err != nil {
				return err
			}
			return common.RunDocumentCommand(cmd.Context(), logger, cmdConfig, cmd.OutOrStdout(), args[0],
				func(ctx context.Context, doc *types.ResumeDocument) (*render.Plan, error) {
					plan, _, _ := renderer.Plan(ctx, doc, style)
					return plan, nil
				})
		},
	}

	addFormatFlags(cmd, &cmdConfig, "")
	cmd.Flags().StringVar(&style, "style", "", "Style: modern, classic or minimal (overrides the document)")
	return cmd
}
