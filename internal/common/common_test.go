package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"resumepdf/internal/errors"
	"resumepdf/internal/render"
	"resumepdf/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeJSON = `{"header": {"name": "Jane Doe"}, "experience": [{"company": "Acme", "start_date": "2020", "end_date": "2022", "highlights": ["Led X"]}]}`

func writeResume(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileProcessorReadWrite(t *testing.T) {
	fp := NewFileProcessor(nil)
	path := filepath.Join(t.TempDir(), "a", "b", "plan.json")

	require.NoError(t, fp.WriteFile(path, []byte("{}")))
	content, err := fp.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), content)

	_, err = fp.ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeFileNotFound, appErr.Code)
}

func TestValidateAndReadFiles(t *testing.T) {
	fp := NewFileProcessor(errors.Discard())
	path := writeResume(t, "resume.json", resumeJSON)

	contents, err := fp.ValidateAndReadFiles(path)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, resumeJSON, string(contents[0]))

	_, err = fp.ValidateAndReadFiles("")
	assert.True(t, errors.IsType(err, errors.ErrorTypeInput))
}

func TestLoadDocument(t *testing.T) {
	doc, err := LoadDocument(nil, writeResume(t, "resume.json", resumeJSON))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", doc.Header.Name)

	bad := writeResume(t, "bad.json", `{"experience": "Acme"}`)
	_, err = LoadDocument(nil, bad)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSchemaViolation, appErr.Code)
	assert.Equal(t, bad, appErr.Context["path"])

	yamlDoc, err := LoadDocument(nil, writeResume(t, "resume.yml", "header:\n  name: Jane Doe\n"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", yamlDoc.Header.Name)

	_, err = LoadDocument(nil, filepath.Join(t.TempDir(), "missing.json"))
	appErr, ok = errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeFileNotFound, appErr.Code)
}

func TestRunDocumentCommandToStdout(t *testing.T) {
	var stdout bytes.Buffer
	path := writeResume(t, "resume.json", resumeJSON)

	err := RunDocumentCommand(context.Background(), nil, CommandConfig{OutputFormat: "text"}, &stdout, path,
		func(_ context.Context, doc *types.ResumeDocument) (*render.Plan, error) {
			return render.BuildPlan(doc, "modern"), nil
		})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Acme  2020 - 2022")
}

func TestRunDocumentCommandToFile(t *testing.T) {
	var stdout bytes.Buffer
	path := writeResume(t, "resume.json", resumeJSON)
	out := filepath.Join(t.TempDir(), "plan.md")

	err := RunDocumentCommand(context.Background(), errors.Discard(),
		CommandConfig{OutputFile: out, OutputFormat: "markdown"}, &stdout, path,
		func(_ context.Context, doc *types.ResumeDocument) (*render.Plan, error) {
			return render.BuildPlan(doc, "modern"), nil
		})
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(written), "## Experience")
}

func TestOutputHandlerUnknownFormat(t *testing.T) {
	handler := NewOutputHandlerWithWriter(nil, &bytes.Buffer{})
	err := handler.HandleOutput(types.ValidationReport{Valid: true}, CommandConfig{OutputFormat: "xml"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeInput))
}

func TestPresenter(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPresenterWithOptions(&out, &errOut, ColorNever)

	p.Success("Resume generated: out.pdf")
	p.Info("plain")
	p.Warning("careful")
	p.Section("Plan")
	p.Error(assert.AnError)

	assert.Equal(t, "Resume generated: out.pdf\nplain\nWarning: careful\nPlan\n----\n", out.String())
	assert.Contains(t, errOut.String(), "Error: "+assert.AnError.Error())

	out.Reset()
	p.SetQuiet(true)
	p.Success("hidden")
	p.Error(assert.AnError)
	assert.Empty(t, out.String())
}

func TestDetectColorMode(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("RESUMEPDF_COLOR", "always")
	assert.Equal(t, ColorAlways, DetectColorMode())

	t.Setenv("RESUMEPDF_COLOR", "off")
	assert.Equal(t, ColorNever, DetectColorMode())

	t.Setenv("RESUMEPDF_COLOR", "")
	assert.Equal(t, ColorAuto, DetectColorMode())

	t.Setenv("NO_COLOR", "1")
	t.Setenv("RESUMEPDF_COLOR", "always")
	assert.Equal(t, ColorNever, DetectColorMode())
}
