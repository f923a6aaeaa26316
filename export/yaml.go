package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"mentorai/tutor/types"
)

type YAMLExporter struct{}

func (e *YAMLExporter) Export(session types.ChatSession, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(session); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
