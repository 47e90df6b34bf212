// Package cli implements the resumepdf command line.
package cli

import (
	"context"
	"fmt"

	"resumepdf/internal/common"
	"resumepdf/internal/config"
	"resumepdf/internal/errors"
	"resumepdf/internal/formatters"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// NewRootCommand builds the command tree. Running the root command with two
// arguments is the same as running render.
func NewRootCommand() *cobra.Command {
	opts := &renderOptions{}

	rootCmd := &cobra.Command{
		Use:   "resumepdf <input> <output.pdf>",
		Short: "Render structured resumes to PDF",
		Long: `resumepdf turns a resume written as JSON or YAML into a typeset PDF.

Three styles are built in: modern, classic and minimal. Sections that are
absent or empty in the input are left out of the document.`,
		Args:          exactArgs(2, "an input document and an output PDF path are required"),
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Argument errors print usage; anything after this point does not.
			cmd.Root().SilenceUsage = true
			return loadRuntime(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, opts)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default: config.yaml in /etc/resumepdf, $HOME/.resumepdf or .)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print errors and requested output")
	addRenderFlags(rootCmd, opts)

	rootCmd.AddCommand(
		newRenderCommand(),
		newPlanCommand(),
		newValidateCommand(),
		newSchemaCommand(),
		newTextCommand(),
		newServeCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the command line with ctx, which should be cancelled on
// interrupt.
func Execute(ctx context.Context, args []string) error {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// loadRuntime loads configuration, applying any bound flags, and attaches
// the config and logger to the command context.
func loadRuntime(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfigWithFlags(configPath, cmd.Flags())
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to load configuration", err)
	}

	level, err := errors.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		return err
	}
	logger := errors.NewLoggerWithWriter(cmd.ErrOrStderr(), level)
	logger.Debug("Configuration loaded",
		"command", cmd.CommandPath(),
		"log_level", cfg.App.LogLevel,
		"default_style", cfg.Render.DefaultStyle)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	cmd.SetContext(ctx)
	return nil
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

func presenterFor(cmd *cobra.Command) *common.Presenter {
	p := common.NewPresenterWithOptions(cmd.OutOrStdout(), cmd.ErrOrStderr(), common.DetectColorMode())
	quiet, _ := cmd.Flags().GetBool("quiet")
	p.SetQuiet(quiet)
	return p
}

// exactArgs rejects the wrong number of positional arguments with an
// InputError so the exit path matches every other input problem.
func exactArgs(n int, message string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.NewInputError(errors.ErrCodeMissingArguments,
				fmt.Sprintf("%s (got %d argument(s), want %d)", message, len(args), n), nil)
		}
		return nil
	}
}

// addFormatFlags registers --format and --output on cmd.
func addFormatFlags(cmd *cobra.Command, cmdConfig *common.CommandConfig, defaultFormat string) {
	cmd.Flags().StringVarP(&cmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cmdConfig.OutputFormat, "format", defaultFormat, "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatters.GlobalRegistry.GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// checkFormat fills in the configured default format and validates it.
func checkFormat(cmd *cobra.Command, cmdConfig *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	if cmdConfig.OutputFormat == "" {
		cmdConfig.OutputFormat = cfg.App.DefaultFormat
	}
	cmdConfig.OutputFormat = common.NormalizeFormat(cmdConfig.OutputFormat)
	return common.ValidateOutputFormat(cmdConfig.OutputFormat, cfg.App.SupportedFormats)
}
