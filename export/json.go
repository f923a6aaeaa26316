package export

import (
	"encoding/json"
	"io"

	"mentorai/tutor/types"
)

// JSONExporter writes the session in its stored shape, indented.
type JSONExporter struct{}

func (e *JSONExporter) Export(session types.ChatSession, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(session)
}

func (e *JSONExporter) Extension() string {
	return "json"
}
