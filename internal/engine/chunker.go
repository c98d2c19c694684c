package engine

import (
	"regexp"
	"strings"
)

// Daily logs can be huge and noisy. PreFilter strips low-signal lines
// before extraction; Chunk splits what remains at section boundaries so
// each collaborator call stays under the configured size.

var noiseRe = regexp.MustCompile(`^\s*(HEARTBEAT_OK|NO_REPLY|\d{2}:\d{2}:\d{2}.*DEBUG)`)

// keepCodeLines is how many lines of a code block survive filtering.
const keepCodeLines = 5

// PreFilter removes repetitive log noise and truncates long code blocks.
func PreFilter(content string) string {
	var filtered []string
	inCode := false
	codeLines := 0

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "```") {
			if inCode && codeLines > keepCodeLines {
				filtered = append(filtered, "[... code block truncated ...]")
			}
			inCode = !inCode
			codeLines = 0
			filtered = append(filtered, line)
			continue
		}

		if inCode {
			codeLines++
			if codeLines <= keepCodeLines {
				filtered = append(filtered, line)
			}
			continue
		}

		if noiseRe.MatchString(line) {
			continue
		}
		filtered = append(filtered, line)
	}

	return strings.Join(filtered, "\n")
}

// Chunk splits content into pieces of at most maxSize characters,
// preferring `## ` section boundaries and falling back to paragraphs.
func Chunk(content string, maxSize int) []string {
	if maxSize <= 0 || len(content) <= maxSize {
		return []string{content}
	}

	var chunks []string
	current := ""
	for _, section := range splitBefore(content, "\n## ") {
		if current != "" && len(current)+len(section) > maxSize {
			chunks = append(chunks, strings.TrimSpace(current))
			current = section
		} else {
			current += section
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	// A single section can still exceed the limit; split at paragraphs.
	var final []string
	for _, chunk := range chunks {
		if len(chunk) <= maxSize {
			final = append(final, chunk)
			continue
		}
		sub := ""
		for _, para := range strings.Split(chunk, "\n\n") {
			if sub != "" && len(sub)+len(para) > maxSize {
				final = append(final, strings.TrimSpace(sub))
				sub = para
			} else if sub == "" {
				sub = para
			} else {
				sub += "\n\n" + para
			}
		}
		if strings.TrimSpace(sub) != "" {
			final = append(final, strings.TrimSpace(sub))
		}
	}

	if len(final) == 0 {
		return []string{content[:maxSize]}
	}
	return final
}

// splitBefore splits s keeping the separator at the start of each
// following piece.
func splitBefore(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := []string{parts[0]}
	for _, p := range parts[1:] {
		out = append(out, sep+p)
	}
	return out
}
