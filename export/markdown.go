package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"mentorai/tutor/types"
)

// MarkdownExporter writes a readable transcript.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(session types.ChatSession, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", session.Title)
	fmt.Fprintf(&b, "**Created:** %s  \n", session.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "**Messages:** %d\n\n", len(session.Messages))
	b.WriteString("---\n\n")

	for i, msg := range session.Messages {
		fmt.Fprintf(&b, "**%s:**\n\n%s\n\n", speaker(msg.Role), escapeMarkdown(msg.Content))
		if i < len(session.Messages)-1 {
			b.WriteString("---\n\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}

func speaker(r types.Role) string {
	if r == types.RoleAssistant {
		return "MentorAI"
	}
	return "You"
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks.
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	inCode := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		line = strings.ReplaceAll(line, "**", `\*\*`)
		lines[i] = strings.ReplaceAll(line, "__", `\_\_`)
	}
	return strings.Join(lines, "\n")
}
