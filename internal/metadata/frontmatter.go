// Package metadata loads per-term titles and summaries from markdown front matter.
package metadata

import (
	"strings"
)

// Metadata is the tooltip text for one term.
type Metadata struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

const frontMatterDelimiter = "---"

// Parse extracts title and summary lines from a ---delimited front matter
// block. It matches line patterns only; other keys are ignored. Fields that
// are absent come back empty. ok is false when there is no front matter block.
func Parse(text string) (meta Metadata, ok bool) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == frontMatterDelimiter {
			start = i + 1
		}
		break
	}
	if start < 0 {
		return Metadata{}, false
	}

	var summary []string
	inSummary := false
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == frontMatterDelimiter {
			break
		}

		switch {
		case strings.HasPrefix(trimmed, "title:") && !indented(line):
			meta.Title = unquote(strings.TrimPrefix(trimmed, "title:"))
			inSummary = false
		case strings.HasPrefix(trimmed, "summary:") && !indented(line):
			value := strings.TrimSpace(strings.TrimPrefix(trimmed, "summary:"))
			summary = summary[:0]
			if value != "" && value != ">" && value != "|" && value != ">-" && value != "|-" {
				summary = append(summary, value)
			}
			inSummary = true
		case inSummary && indented(line) && trimmed != "":
			summary = append(summary, trimmed)
		default:
			inSummary = false
		}
	}

	meta.Summary = unquote(strings.Join(summary, " "))
	return meta, true
}

func indented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// unquote trims whitespace and one pair of surrounding quotes, and
// collapses internal whitespace runs.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
