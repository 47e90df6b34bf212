package document

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"resumepdf/internal/errors"
	"resumepdf/internal/types"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

const schemaDraft = "http://json-schema.org/draft-07/schema#"

var (
	schemaOnce     sync.Once
	schemaBytes    []byte
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Violations, "; "))
}

// GenerateSchema reflects the JSON Schema of ResumeDocument. No field is
// required and unknown fields are tolerated, matching the loader's lenient
// treatment of optional sections.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(&types.ResumeDocument{})
	schema.Version = schemaDraft
	schema.Title = "Resume document"
	schema.Description = "Structured resume rendered into a PDF by resumepdf"
	return schema
}

func loadSchema() {
	schemaOnce.Do(func() {
		schemaBytes, schemaErr = json.MarshalIndent(GenerateSchema(), "", "  ")
		if schemaErr != nil {
			return
		}
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	})
}

// Schema returns the indented JSON Schema document.
func Schema() ([]byte, error) {
	loadSchema()
	if schemaErr != nil {
		return nil, errors.NewInternalError("SCHEMA_UNAVAILABLE", "Failed to build resume schema", schemaErr)
	}
	return schemaBytes, nil
}

// Validate checks a generically decoded document (maps, slices, strings)
// against the resume schema.
func Validate(doc any) error {
	loadSchema()
	if schemaErr != nil {
		return errors.NewInternalError("SCHEMA_UNAVAILABLE", "Failed to build resume schema", schemaErr)
	}

	result, err := compiledSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return errors.NewInputError(errors.ErrCodeInvalidDocument, "Resume document could not be validated", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return errors.NewInputError(errors.ErrCodeSchemaViolation,
		"Resume document does not match the expected structure",
		&ValidationError{Violations: violations}).
		WithContext("violation_count", len(violations))
}

// Report checks raw document bytes and lists every problem found, for
// callers that want a verdict rather than an error.
func Report(data []byte, format Format) types.ValidationReport {
	_, err := Parse(data, format)
	if err == nil {
		return types.ValidationReport{Valid: true, Errors: []string{}}
	}

	var violations *ValidationError
	if stderrors.As(err, &violations) {
		return types.ValidationReport{Errors: violations.Violations}
	}
	if appErr, ok := errors.As(err); ok && appErr.Cause != nil {
		return types.ValidationReport{Errors: []string{fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)}}
	}
	return types.ValidationReport{Errors: []string{err.Error()}}
}
