package ai

import "strings"

const (
	// SummaryMaxLines bounds the rolling summary window.
	SummaryMaxLines = 20
	// SummaryMaxLineLength bounds a single summary line, in characters.
	SummaryMaxLineLength = 240

	UserTag      = "U"
	AssistantTag = "A"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// AppendSummary adds line to the end of summary and returns the new summary.
// The line is cut to its first SummaryMaxLineLength characters and only the
// last SummaryMaxLines lines are kept. Line breaks inside line are flattened
// so each appended entry occupies exactly one line.
func AppendSummary(summary, line string) string {
	base := strings.TrimSpace(summary)

	var lines []string
	if base != "" {
		lines = strings.Split(base, "\n")
	}

	lines = append(lines, truncateRunes(lineBreaks.Replace(line), SummaryMaxLineLength))
	if len(lines) > SummaryMaxLines {
		lines = lines[len(lines)-SummaryMaxLines:]
	}
	return strings.Join(lines, "\n")
}

// SummaryLine formats a summary entry as "<tag>: <text>".
func SummaryLine(tag, text string) string {
	return tag + ": " + text
}

func truncateRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
