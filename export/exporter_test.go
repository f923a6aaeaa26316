package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"mentorai/tutor/types"
)

func testSession() types.ChatSession {
	return types.ChatSession{
		ID:        "s1",
		Title:     "Derivatives",
		CreatedAt: types.NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)),
		Messages: []types.Message{
			{ID: "m1", Role: types.RoleUser, Content: "What is a **derivative**?"},
			{ID: "m2", Role: types.RoleAssistant, Content: "A rate of change.\n```\nf'(x) = **x\n```"},
		},
	}
}

func TestNewExporter(t *testing.T) {
	for format, ext := range map[string]string{"json": "json", "YAML": "yaml", "yml": "yaml", "md": "md", "markdown": "md"} {
		e, err := NewExporter(format)
		require.NoError(t, err, format)
		assert.Equal(t, ext, e.Extension())
	}

	_, err := NewExporter("pdf")
	assert.EqualError(t, err, "unsupported format: pdf (supported: json, yaml, md)")
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONExporter{}).Export(testSession(), &buf))

	var got types.ChatSession
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testSession(), got)
	assert.Contains(t, buf.String(), `"createdAt": "2025-01-02T03:04:05.000Z"`)
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLExporter{}).Export(testSession(), &buf))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Derivatives", got["title"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownExporter{}).Export(testSession(), &buf))
	out := buf.String()

	assert.Contains(t, out, "# Derivatives\n")
	assert.Contains(t, out, "**Messages:** 2")
	assert.Contains(t, out, "**You:**\n\nWhat is a \\*\\*derivative\\*\\*?")
	assert.Contains(t, out, "**MentorAI:**")
	assert.Contains(t, out, "f'(x) = **x", "code blocks are left alone")
}

func TestMarkdownExporter_EmptySession(t *testing.T) {
	s := testSession()
	s.Messages = nil

	var buf bytes.Buffer
	require.NoError(t, (&MarkdownExporter{}).Export(s, &buf))
	assert.Contains(t, buf.String(), "**Messages:** 0")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "20250102-030405-s1.md", Filename(testSession(), &MarkdownExporter{}))
}
