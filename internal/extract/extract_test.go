package extract

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"resumepdf/internal/errors"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	for _, text := range pages {
		doc.AddPage()
		doc.SetFont("Helvetica", "", 12)
		doc.Cell(0, 10, text)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestPages(t *testing.T) {
	data := samplePDF(t, "First page", "Second page")

	pages, err := Pages(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "First page")
	assert.Contains(t, pages[1], "Second page")

	text, err := Text(context.Background(), data)
	require.NoError(t, err)
	assert.Contains(t, text, "First page")
	assert.Contains(t, text, "Second page")
}

func TestTextRejectsNonPDF(t *testing.T) {
	_, err := Text(context.Background(), []byte(`{"header": {}}`))
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidFormat, appErr.Code)
}

func TestTextHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Text(ctx, samplePDF(t, "x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(path, samplePDF(t, "Jane Doe"), 0o600))

	text, err := TextFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe")

	_, err = TextFromFile(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeInput))
}
