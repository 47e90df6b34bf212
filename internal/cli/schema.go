package cli

import (
	"resumepdf/internal/common"
	"resumepdf/internal/document"

	"github.com/spf13/cobra"
)

func newSchemaCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for resume documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())

			schema, err := document.Schema()
			if err != nil {
				return err
			}
			if output != "" {
				if err := common.NewFileProcessor(logger).WriteFile(output, schema); err != nil {
					return err
				}
				presenterFor(cmd).Success("Schema written: " + output)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(schema)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}
