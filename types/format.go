package types

import (
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// FormatTable renders rows as a markdown table under a "# title" heading.
// It returns "" when there are no rows.
func FormatTable(title string, header []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# ")
	buf.WriteString(title)
	buf.WriteString(":\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header(toAny(header)...)
	for _, row := range rows {
		_ = table.Append(toAny(row)...)
	}
	_ = table.Render()
	return buf.String()
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Speaker names the author of a history message the way the prompts show it.
func Speaker(m *schema.Message) string {
	switch m.Role {
	case schema.User:
		return "Human"
	case schema.Assistant:
		return "AI"
	case schema.System:
		return "System"
	default:
		return string(m.Role)
	}
}

// FormatConversation renders the history window as "- who: text" lines followed by
// the current utterance.
func FormatConversation(history []*schema.Message, utterance string) string {
	var sb strings.Builder
	for _, m := range history {
		if m == nil || strings.TrimSpace(m.Content) == "" {
			continue
		}
		sb.WriteString(" - ")
		sb.WriteString(Speaker(m))
		sb.WriteString(": ")
		sb.WriteString(strings.TrimSpace(m.Content))
		sb.WriteString("\n")
	}
	sb.WriteString("Human: ")
	sb.WriteString(utterance)
	return sb.String()
}

// FormatFieldErrors joins errors as "field: message" strings.
func FormatFieldErrors(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.String())
	}
	return out
}
