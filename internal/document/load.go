// Package document decodes resume documents from JSON or YAML and checks
// them against the resume schema before they reach the renderer.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"resumepdf/internal/errors"
	"resumepdf/internal/types"
	"resumepdf/internal/utils"

	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a resume document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat picks the format from the file extension. Anything that is
// not .yaml or .yml is treated as JSON.
func DetectFormat(path string) Format {
	switch utils.GetFileExtension(path) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat maps a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.NewInputError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Unsupported document format: %s", name), nil)
	}
}

// Parse decodes and validates a resume document.
func Parse(data []byte, format Format) (*types.ResumeDocument, error) {
	if format != FormatYAML {
		text, err := textualizeJSON(data)
		if err != nil {
			return nil, errors.NewInputError(errors.ErrCodeInvalidDocument,
				fmt.Sprintf("Malformed %s document", format), err)
		}
		data = text
	}

	generic, err := decodeGeneric(data, format)
	if err != nil {
		return nil, errors.NewInputError(errors.ErrCodeInvalidDocument,
			fmt.Sprintf("Malformed %s document", format), err)
	}

	if err := Validate(generic); err != nil {
		return nil, err
	}

	var doc types.ResumeDocument
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.NewInputError(errors.ErrCodeInvalidDocument,
			fmt.Sprintf("Cannot decode %s document", format), err)
	}

	return &doc, nil
}

func decodeGeneric(data []byte, format Format) (any, error) {
	var generic any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, err
		}
		return normalizeYAML(generic), nil
	default:
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, err
		}
		return generic, nil
	}
}

// textualizeJSON rewrites a JSON document with every number and boolean
// turned into a string, keeping key order. It is the JSON counterpart of
// normalizeYAML.
func textualizeJSON(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	type frame struct {
		object bool
		n      int
	}
	var (
		out   bytes.Buffer
		stack []frame
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
			stack = stack[:len(stack)-1]
			out.WriteByte(byte(d))
			continue
		}

		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			switch {
			case top.object && top.n%2 == 1:
				out.WriteByte(':')
			case top.n > 0:
				out.WriteByte(',')
			}
			top.n++
		} else if out.Len() > 0 {
			return nil, fmt.Errorf("unexpected data after the top-level value")
		}

		switch v := tok.(type) {
		case json.Delim:
			out.WriteByte(byte(v))
			stack = append(stack, frame{object: v == '{'})
		case json.Number:
			writeJSONString(&out, v.String())
		case bool:
			writeJSONString(&out, strconv.FormatBool(v))
		case string:
			writeJSONString(&out, v)
		case nil:
			out.WriteString("null")
		}
	}

	if out.Len() == 0 || len(stack) > 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return out.Bytes(), nil
}

func writeJSONString(out *bytes.Buffer, s string) {
	quoted, _ := json.Marshal(s)
	out.Write(quoted)
}

// normalizeYAML turns a yaml.v3 tree into JSON-shaped values. Every leaf of a
// resume is text, so unquoted years, GPAs and phone numbers become strings
// the same way the typed decoder reads them.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	case int:
		return strconv.Itoa(val)
	case int64, uint64:
		return fmt.Sprint(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.DateOnly)
	default:
		return v
	}
}
