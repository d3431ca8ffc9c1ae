package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"helm/internal/app/sanitizer"
	"helm/internal/transcript"
	"helm/internal/types"
)

var (
	userLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	agentLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	thinkingStyle   = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("245"))
	toolStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mediaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	overlayStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	metaStyle       = lipgloss.NewStyle().Faint(true)
)

// Agent output is untrusted terminal input; strip escape sequences before
// anything reaches the screen.
var (
	contentSanitizer = sanitizer.NewTerminalSanitizer(sanitizer.DefaultConfig())
	lineSanitizer    = sanitizer.NewTerminalSanitizer(sanitizer.SingleLineConfig())
)

func renderTranscript(messages []*transcript.Message, width int, spinnerView string) string {
	if len(messages) == 0 {
		return metaStyle.Render("No messages yet. Type a task and press enter.")
	}
	sections := make([]string, 0, len(messages))
	for _, msg := range messages {
		if section := renderMessage(msg, width, spinnerView); section != "" {
			sections = append(sections, section)
		}
	}
	return strings.Join(sections, "\n\n")
}

func renderMessage(msg *transcript.Message, width int, spinnerView string) string {
	if msg == nil {
		return ""
	}
	if msg.Role == transcript.RoleUser {
		body := renderMarkdown(escapeMarkdown(contentSanitizer.Sanitize(msg.Text)), width)
		return userLabelStyle.Render("You") + "\n" + body
	}
	return renderAssistantMessage(msg, width, spinnerView)
}

func renderAssistantMessage(msg *transcript.Message, width int, spinnerView string) string {
	var lines []string

	header := agentLabelStyle.Render("Helm")
	if label := activityLabel(msg.Activity); label != "" {
		header += " " + metaStyle.Render(label)
	}
	if msg.Streaming && spinnerView != "" {
		header += " " + spinnerView
	}
	lines = append(lines, header)

	if len(msg.TaskList) > 0 {
		lines = append(lines, renderTaskList(msg.TaskList))
	}
	for _, block := range msg.Blocks {
		if rendered := renderBlock(block, width); rendered != "" {
			lines = append(lines, rendered)
		}
	}
	if msg.Error != "" {
		lines = append(lines, errorStyle.Render("✗ "+lineSanitizer.Sanitize(msg.Error)))
	}
	if msg.Result != "" && msg.Terminal() && msg.PlainText == "" {
		lines = append(lines, resultStyle.Render(contentSanitizer.Sanitize(msg.Result)))
	}
	for _, checkpoint := range msg.Checkpoints {
		lines = append(lines, metaStyle.Render("⚑ "+checkpointLabel(checkpoint)))
	}
	if msg.ContextUsage != nil {
		lines = append(lines, metaStyle.Render(contextUsageLine(msg.ContextUsage)))
	}
	if msg.Followup != nil {
		lines = append(lines, overlayStyle.Render("? "+lineSanitizer.Sanitize(msg.Followup.Text))+
			metaStyle.Render("  (type answer, enter to send)"))
	}
	if msg.Approval != nil {
		summary := approvalSummary(msg.Approval.Payload)
		line := "! approval required"
		if summary != "" {
			line += ": " + lineSanitizer.Sanitize(summary)
		}
		lines = append(lines, overlayStyle.Render(line)+metaStyle.Render("  (y approve / n deny)"))
	}
	return strings.Join(lines, "\n")
}

func renderBlock(block transcript.Block, width int) string {
	switch block.Kind {
	case transcript.BlockText:
		return renderMarkdown(contentSanitizer.Sanitize(block.Content), width)
	case transcript.BlockThinking:
		content := contentSanitizer.Sanitize(block.Content)
		if content == "" {
			return ""
		}
		return thinkingStyle.Render(transcript.ReasoningMarker + " " + content)
	case transcript.BlockToolCall:
		return renderToolLine(block.Tool)
	case transcript.BlockMedia:
		return renderMediaLine(block.Media)
	}
	return ""
}

func renderToolLine(tool *transcript.ToolCallInfo) string {
	if tool == nil {
		return ""
	}
	name := tool.ToolName
	if name == "" {
		name = tool.Tool
	}
	mark := "✓"
	if !tool.Success {
		mark = "✗"
	}
	line := fmt.Sprintf("⚙ %s %s", mark, lineSanitizer.Sanitize(name))
	if tool.Summary != "" {
		line += " — " + lineSanitizer.Sanitize(tool.Summary)
	}
	if tool.Duration > 0 {
		line += " " + metaStyle.Render("("+formatDuration(tool.Duration)+")")
	}
	return toolStyle.Render(line)
}

func renderMediaLine(media *transcript.MediaInfo) string {
	if media == nil {
		return ""
	}
	title := media.Title
	if title == "" {
		title = media.Ref
	}
	line := "▶ " + lineSanitizer.Sanitize(title)
	if media.Kind != "" {
		line += " " + metaStyle.Render("["+media.Kind+"]")
	}
	return mediaStyle.Render(line)
}

func renderTaskList(items []types.TaskListItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		mark := "[ ]"
		switch item.Status {
		case "completed", "done":
			mark = "[x]"
		case "in_progress", "running":
			mark = "[~]"
		}
		lines = append(lines, metaStyle.Render(mark+" "+lineSanitizer.Sanitize(item.Title)))
	}
	return strings.Join(lines, "\n")
}

func activityLabel(activity transcript.Activity) string {
	switch activity {
	case transcript.ActivityThinking:
		return "thinking"
	case transcript.ActivityReasoning:
		return "reasoning"
	case transcript.ActivityToolUse:
		return "working"
	case transcript.ActivityCompleted:
		return "done"
	case transcript.ActivityError:
		return "failed"
	}
	return ""
}

func checkpointLabel(checkpoint types.Checkpoint) string {
	if checkpoint.Label != "" {
		return checkpoint.Label
	}
	if checkpoint.Step != "" {
		return checkpoint.Step
	}
	return checkpoint.ID
}

func contextUsageLine(usage *types.ContextUsage) string {
	line := fmt.Sprintf("context %.0f%%", usage.UsagePercent)
	if usage.BudgetTotal > 0 {
		line += fmt.Sprintf(" (%s/%s tokens)", formatTokens(usage.TokensUsed), formatTokens(usage.BudgetTotal))
	}
	if usage.Condensations > 0 {
		line += fmt.Sprintf(", condensed %dx", usage.Condensations)
	}
	return line
}

func formatTokens(count int64) string {
	if count >= 1000 {
		return fmt.Sprintf("%.1fk", float64(count)/1000)
	}
	return fmt.Sprintf("%d", count)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
