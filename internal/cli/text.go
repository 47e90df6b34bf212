package cli

import (
	"fmt"
	"strings"

	"resumepdf/internal/common"
	"resumepdf/internal/extract"
	"resumepdf/internal/utils"

	"github.com/spf13/cobra"
)

func newTextCommand() *cobra.Command {
	var (
		output  string
		byPages bool
	)

	cmd := &cobra.Command{
		Use:   "text <file.pdf>",
		Short: "Print the plain text of a PDF",
		Long: `Print the text a PDF reader extracts from a document, page by page.
Use it to check what an applicant tracking system will see in a generated
resume.`,
		Args: exactArgs(1, "a PDF file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLoggerFromContext(cmd.Context())
			path := args[0]
			if !utils.IsPDFFile(path) {
				presenterFor(cmd).Warning(fmt.Sprintf("%s does not have a .pdf extension", path))
			}

			pages, err := extract.PagesFromFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			if output != "" {
				return common.NewFileProcessor(logger).WriteFile(output, []byte(strings.Join(pages, "\n")))
			}
			if !byPages {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(pages, "\n"))
				return err
			}

			presenter := presenterFor(cmd)
			for i, page := range pages {
				presenter.Section(fmt.Sprintf("Page %d", i+1))
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), page); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&byPages, "pages", false, "Print a heading before each page (stdout only)")
	return cmd
}
