package common

import (
	"context"
	"io"

	"resumepdf/internal/document"
	"resumepdf/internal/errors"
	"resumepdf/internal/types"
)

// DocumentOperationFunc turns a loaded resume into command output.
type DocumentOperationFunc[Output any] func(context.Context, *types.ResumeDocument) (Output, error)

// RunDocumentCommand loads the resume at path, runs op on it and hands the
// result to the output handler.
func RunDocumentCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	stdout io.Writer,
	path string,
	op DocumentOperationFunc[Output],
) error {
	outputHandler := NewOutputHandlerWithWriter(logger, stdout)

	doc, err := LoadDocument(logger, path)
	if err != nil {
		return err
	}

	result, err := op(ctx, doc)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}

// LoadDocument validates, reads and parses the resume at path.
func LoadDocument(logger *errors.Logger, path string) (*types.ResumeDocument, error) {
	fileProcessor := NewFileProcessor(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(path)
	if err != nil {
		return nil, err
	}

	doc, err := document.Parse(contents[0], document.DetectFormat(path))
	if appErr, ok := errors.As(err); ok {
		return nil, appErr.WithContext("path", path)
	}
	return doc, err
}
