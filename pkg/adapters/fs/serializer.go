package fs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tasksage/tasksage/pkg/core"
)

// Records are stored as Markdown files: YAML frontmatter for the field map,
// body for the content field. Timestamps are serialized as RFC 3339 strings
// so files stay portable and diff-friendly; core's decoders accept both
// forms.

func encodeRecord(fields core.Fields) ([]byte, error) {
	meta := make(map[string]any, len(fields))
	var content string
	for k, v := range fields {
		if k == core.FieldContent {
			if s, ok := v.(string); ok {
				content = s
				continue
			}
		}
		if t, ok := v.(time.Time); ok {
			meta[k] = t.Format(time.RFC3339)
			continue
		}
		meta[k] = v
	}

	var buf bytes.Buffer
	if len(meta) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(meta); err != nil {
			return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
		}
		encoder.Close()
		buf.WriteString("---\n")
	}
	buf.WriteString(content)
	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (core.Fields, error) {
	fields := make(core.Fields)

	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		if len(data) > 0 {
			fields[core.FieldContent] = string(data)
		}
		return fields, nil
	}

	rest := data[3:]
	parts := bytes.SplitN(rest, []byte("---"), 2)
	if len(parts) == 1 {
		return nil, errors.New("frontmatter started but no closing delimiter found")
	}

	var meta map[string]any
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	for k, v := range meta {
		fields[k] = v
	}

	content := strings.TrimPrefix(string(parts[1]), "\n")
	content = strings.TrimPrefix(content, "\r\n")
	if content != "" {
		fields[core.FieldContent] = content
	}
	return fields, nil
}
