package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// TravelRequestSchema returns the JSON schema of TravelRequest.
func TravelRequestSchema() (string, error) {
	schema := jsonschema.Reflect(&TravelRequest{})
	schema.Title = "旅行需求"
	schema.Description = "用户旅行计划的结构化需求，包含目的地、日期、偏好、预算和同行人等信息。"
	schemaBytes, err := sonic.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return string(schemaBytes), nil
}

// PromptContext is everything an extraction prompt needs to know about a conversation.
type PromptContext struct {
	Now         time.Time
	Current     *TravelRequest
	UserTurns   []string
	Missing     []FieldInfo
	StateSchema string
}

func formatKnownFieldsSection(r *TravelRequest) string {
	if r == nil || r.IsEmpty() {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Known trip details:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	for _, name := range FieldPriority {
		f := fieldIndex[name]
		if !f.isSet(r) {
			continue
		}
		_ = table.Append(f.Name, fmt.Sprint(f.get(r)))
	}
	_ = table.Render()
	return buf.String()
}

func formatMissingFieldsSection(fields []FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Missing required fields:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Pointer", "Description")
	for _, field := range fields {
		_ = table.Append(field.DisplayName, field.JSONPointer, field.Description)
	}
	_ = table.Render()
	return buf.String()
}

// FormatPromptContext renders the markdown user message used by extraction prompts.
func FormatPromptContext(pc *PromptContext) string {
	now := pc.Now
	if now.IsZero() {
		now = time.Now()
	}
	sections := []string{
		fmt.Sprintf("# Current Date:\n%s", now.Format(time.DateOnly)),
	}
	if s := formatKnownFieldsSection(pc.Current); s != "" {
		sections = append(sections, s)
	}
	if pc.StateSchema != "" {
		sections = append(sections, fmt.Sprintf("# Trip schema JSON:\n```json\n%s\n```", pc.StateSchema))
	}
	if s := formatMissingFieldsSection(pc.Missing); s != "" {
		sections = append(sections, s)
	}
	if len(pc.UserTurns) > 0 {
		var sb strings.Builder
		sb.WriteString("# User messages (oldest first):\n")
		for i, turn := range pc.UserTurns {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, turn)
		}
		sections = append(sections, strings.TrimRight(sb.String(), "\n"))
	}
	return strings.Join(sections, "\n\n")
}
