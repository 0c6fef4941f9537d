package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses structured text into a document tree. JSON is tried first;
// text that is not JSON is read as YAML. The top level must be a mapping.
// Numbers are normalized (integral values become int).
func Decode(text string) (Node, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input", ErrParse)
	}

	var payload map[string]any
	decoder := json.NewDecoder(strings.NewReader(trimmed))
	decoder.UseNumber()
	jsonErr := decoder.Decode(&payload)
	if jsonErr == nil {
		var trailing any
		if err := decoder.Decode(&trailing); err != io.EOF {
			return nil, fmt.Errorf("%w: invalid json: trailing data", ErrParse)
		}
	}
	if jsonErr != nil {
		if strings.HasPrefix(trimmed, "{") {
			return nil, fmt.Errorf("%w: invalid json: %v", ErrParse, jsonErr)
		}
		if err := yaml.Unmarshal([]byte(trimmed), &payload); err != nil {
			return nil, fmt.Errorf("%w: invalid yaml: %v", ErrParse, err)
		}
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrParse)
	}

	return Normalize(payload).(Node), nil
}

// DecodeValue parses a single JSON value (e.g. an HTTP request body field).
func DecodeValue(data []byte) (any, error) {
	var v any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrParse, err)
	}
	var trailing any
	if err := decoder.Decode(&trailing); err != io.EOF {
		return nil, fmt.Errorf("%w: invalid json: trailing data", ErrParse)
	}
	return Normalize(v), nil
}

// Encode serializes the document as compact JSON, the storage form.
func Encode(doc Document) (string, error) {
	return encodeJSON(doc, "")
}

// EncodeIndent serializes the document as 2-space indented JSON, the export form.
func EncodeIndent(doc Document) (string, error) {
	return encodeJSON(doc, "  ")
}

// EncodeYAML serializes the document as YAML.
func EncodeYAML(doc Document) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.String(), nil
}

func encodeJSON(doc Document, indent string) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if indent != "" {
		encoder.SetIndent("", indent)
	}
	if err := encoder.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to encode json: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Normalize converts a value into the canonical tree shapes: mappings become
// Node, sequences become []any, and numbers become int when integral or
// float64 otherwise. Values written through the store pass through it so that
// reads return the same shapes as a decoded document.
func Normalize(val any) any {
	switch v := val.(type) {
	case map[string]any:
		m := make(Node, len(v))
		for k, item := range v {
			m[k] = Normalize(item)
		}
		return m
	case map[string]string:
		m := make(Node, len(v))
		for k, item := range v {
			m[k] = item
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, item := range v {
			l[i] = Normalize(item)
		}
		return l
	case []map[string]any:
		l := make([]any, len(v))
		for i, item := range v {
			l[i] = Normalize(item)
		}
		return l
	case []string:
		l := make([]any, len(v))
		for i, item := range v {
			l[i] = item
		}
		return l
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return float64(v)
	default:
		return v
	}
}
