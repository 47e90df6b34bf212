package cli

import (
	"fmt"

	"resumepdf/internal/common"
	"resumepdf/internal/document"
	"resumepdf/internal/errors"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var cmdConfig common.CommandConfig

	cmd := &cobra.Command{
		Use:   "validate <input>",
		Short: "Check a resume document against the schema",
		Long: `Check a JSON or YAML resume document against the resume schema and list
every problem found. Exits non-zero when the document is invalid.`,
		Args: exactArgs(1, "an input document is required"),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return checkFormat(cmd, &cmdConfig)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())
			path := args[0]

			contents, err := common.NewFileProcessor(logger).ValidateAndReadFiles(path)
			if err != nil {
				return err
			}

			report := document.Report(contents[0], document.DetectFormat(path))
			if err := common.NewOutputHandlerWithWriter(logger, cmd.OutOrStdout()).HandleOutput(report, cmdConfig); err != nil {
				return err
			}
			if !report.Valid {
				return errors.NewInputError(errors.ErrCodeSchemaViolation,
					fmt.Sprintf("%s is not a valid resume document (%d problem(s))", path, len(report.Errors)), nil)
			}
			return nil
		},
	}

	addFormatFlags(cmd, &cmdConfig, "text")
	return cmd
}
