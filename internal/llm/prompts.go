package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// CategorizationMaxTokens bounds the reply to a categorization request.
const CategorizationMaxTokens = 64

// defaultCompletionTokens is used when a caller passes a non-positive budget.
const defaultCompletionTokens = 256

// CategorizationSystemPrompt instructs the model to answer with a single
// "<Main category> : <Subcategory>" line.
const CategorizationSystemPrompt = `You are a file categorization assistant. You must always follow the exact format. If the file is an installer, determine the type of software it installs. Base your answer on the filename, extension, and any directory context provided. The output must be:
<Main category> : <Subcategory>
Main category must be broad (one or two words, plural). Subcategory must be specific, relevant, and never just repeat the main category. Output exactly one line. Do not explain, add line breaks, or use words like 'Subcategory'. If uncertain, always make your best guess based on the name only. Do not apologize or state uncertainty. Never say you lack information.
Examples:
Texts : Documents
Productivity : File managers
Tables : Financial logs
Utilities : Task managers`

// BuildCategorizationPrompt renders the user message for one item. extra is
// appended verbatim when non-empty (language, whitelist and hint blocks).
func BuildCategorizationPrompt(name, path string, isDir bool, extra string) string {
	var b strings.Builder
	if isDir {
		b.WriteString("Categorize the directory:\n")
	} else {
		b.WriteString("Categorize this file:\n")
	}
	if path != "" {
		fmt.Fprintf(&b, "Full path: %s\n", path)
	}
	fmt.Fprintf(&b, "Name: %s\n", name)
	if extra = strings.TrimSpace(extra); extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}
	return b.String()
}

// SanitizeCategoryLine extracts the first "X : Y" line from a chatty reply
// and drops a trailing parenthetical remark. Replies without such a line are
// returned trimmed.
func SanitizeCategoryLine(output string) string {
	output = strings.TrimSpace(output)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		before, after, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(before) == "" || strings.TrimSpace(after) == "" {
			continue
		}
		if idx := strings.Index(line, " ("); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		return line
	}
	return output
}

// DecodeJSON unmarshals a model reply into target. It tolerates code fences
// and prose around the JSON payload.
func DecodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := sanitizeJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, snippet(trimmed))
	}

	if err := json.Unmarshal([]byte(sanitized), target); err != nil {
		return fmt.Errorf("%w (sanitized payload snippet: %s)", err, snippet(sanitized))
	}
	return nil
}

func sanitizeJSONPayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFence(content))
	if trimmed == "" {
		return ""
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}

	// Take whichever bracket opens first so a bare array of objects keeps
	// its outer brackets.
	open, close := byte('{'), byte('}')
	obj, arr := strings.IndexByte(trimmed, '{'), strings.IndexByte(trimmed, '[')
	if arr >= 0 && (obj < 0 || arr < obj) {
		open, close = '[', ']'
	}
	start := strings.IndexByte(trimmed, open)
	end := strings.LastIndexByte(trimmed, close)
	if start >= 0 && end > start {
		return strings.TrimSpace(trimmed[start : end+1])
	}
	return trimmed
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func snippet(s string) string {
	const limit = 200
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func completionBudget(maxTokens int) int {
	if maxTokens > 0 {
		return maxTokens
	}
	return defaultCompletionTokens
}
