package cli

import (
	"context"
	"fmt"
	"time"

	"resumepdf/internal/common"
	"resumepdf/internal/config"
	"resumepdf/internal/errors"
	"resumepdf/internal/render"
	"resumepdf/internal/utils"
	"resumepdf/internal/watch"

	"github.com/spf13/cobra"
)

type renderOptions struct {
	style string
	watch bool
}

func newRenderCommand() *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <input> <output.pdf>",
		Short: "Render a resume document to PDF",
		Long: `Render a JSON or YAML resume document to a PDF file.

The style is taken from --style, then the document's own "style" field, then
render.defaultStyle in the configuration. Unknown styles fall back to modern.

With --watch the document is rendered again every time the input changes,
until interrupted.`,
		Args: exactArgs(2, "an input document and an output PDF path are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}
	addRenderFlags(cmd, opts)
	return cmd
}

func addRenderFlags(cmd *cobra.Command, opts *renderOptions) {
	cmd.Flags().StringVar(&opts.style, "style", "", "Style: modern, classic or minimal (overrides the document)")
	cmd.Flags().String("font", "", "TrueType font file with the glyphs the resume needs")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-render whenever the input file changes")
	cmd.Flags().Duration("debounce", 0, "Quiet period before a watched change triggers a render")

	_ = cmd.RegisterFlagCompletionFunc("style", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return render.StyleNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

// newRenderer builds a Renderer from the render section of the config.
func newRenderer(cfg *config.Config, logger *errors.Logger) (*render.Renderer, error) {
	return render.NewRenderer(render.Options{
		DefaultStyle: cfg.Render.DefaultStyle,
		PDF: render.PDFOptions{
			FontPath:     cfg.Render.FontPath,
			CreationTime: cfg.CreationTime(),
			Compress:     cfg.Render.Compress,
			Creator:      cfg.Render.Creator,
		},
	}, logger)
}

func runRender(cmd *cobra.Command, args []string, opts *renderOptions) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)
	presenter := presenterFor(cmd)

	renderer, err := newRenderer(cfg, logger)
	if err != nil {
		return err
	}

	input, output := args[0], args[1]
	renderOnce := func(ctx context.Context) error {
		return renderFile(ctx, renderer, presenter, logger, input, output, opts.style)
	}

	if !opts.watch {
		return renderOnce(ctx)
	}

	if err := renderOnce(ctx); err != nil {
		presenter.Error(err)
	}

	w, err := watch.New([]string{input}, cfg.Watch.DebounceDelay, logger)
	if err != nil {
		return err
	}
	presenter.Info(fmt.Sprintf("Watching %s for changes (press Ctrl+C to stop)", input))
	return w.Run(ctx, func(ctx context.Context) error {
		if err := renderOnce(ctx); err != nil {
			presenter.Error(err)
			return err
		}
		return nil
	})
}

func renderFile(ctx context.Context, renderer *render.Renderer, presenter *common.Presenter, logger *errors.Logger, input, output, style string) error {
	start := time.Now()
	doc, err := common.LoadDocument(logger, input)
	if err != nil {
		return err
	}

	result, err := renderer.GenerateFile(ctx, doc, style, output)
	if err != nil {
		return err
	}

	if result.Fallback {
		presenter.Warning(fmt.Sprintf("unknown style %q, rendered with %s", result.Style, result.Plan.Theme.Name))
	}
	logger.Info("Resume rendered",
		"input", input,
		"output", output,
		"style", result.Plan.Theme.Name,
		"pages", result.Stats.Pages,
		"size", utils.FormatFileSize(result.Stats.Bytes),
		"duration_ms", time.Since(start).Milliseconds())
	presenter.Success(fmt.Sprintf("Resume generated: %s", output))
	return nil
}
