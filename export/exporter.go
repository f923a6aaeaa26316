// Package export renders a chat session for saving outside the store.
package export

import (
	"fmt"
	"io"
	"strings"

	"mentorai/tutor/types"
)

type Exporter interface {
	Export(session types.ChatSession, w io.Writer) error
	Extension() string
}

// NewExporter returns the exporter for format.
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md)", format)
	}
}

// Filename builds a file name for a session export.
func Filename(session types.ChatSession, e Exporter) string {
	return fmt.Sprintf("%s-%s.%s", session.CreatedAt.UTC().Format("20060102-150405"), session.ID, e.Extension())
}
