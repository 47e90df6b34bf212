// Package extract reads plain text back out of PDF files, the way a
// resume screening system would see them.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"resumepdf/internal/errors"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// Text returns the text of every page, pages separated by a newline.
func Text(ctx context.Context, data []byte) (string, error) {
	pages, err := Pages(ctx, data)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n"), nil
}

// Pages returns the text of each page in order.
func Pages(ctx context.Context, data []byte) (pages []string, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, errors.NewInputError(errors.ErrCodeInvalidFormat, "Not a PDF document", nil)
	}

	// The reader panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = errors.NewInputError(errors.ErrCodeExtractFailed,
				"Malformed PDF document", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewInputError(errors.ErrCodeExtractFailed, "Cannot open PDF document", err)
	}

	fonts := make(map[string]*pdf.Font)
	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, errors.NewInputError(errors.ErrCodeExtractFailed,
				fmt.Sprintf("Cannot read page %d", i), err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// TextFromFile reads path and extracts its text.
func TextFromFile(ctx context.Context, path string) (string, error) {
	pages, err := PagesFromFile(ctx, path)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n"), nil
}

// PagesFromFile reads path and extracts the text of each page.
func PagesFromFile(ctx context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File does not exist: %s", path), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read %s", path), err)
	}

	pages, err := Pages(ctx, data)
	if appErr, ok := errors.As(err); ok {
		return nil, appErr.WithContext("path", path)
	}
	return pages, err
}
