package llm

import "strings"

// extractJSON pulls the JSON document out of a reply that may wrap it in a
// markdown code block or surround it with prose.
func extractJSON(s string) string {
	for _, fence := range []string{"```json", "```"} {
		idx := strings.Index(s, fence)
		if idx == -1 {
			continue
		}
		rest := strings.TrimLeft(s[idx+len(fence):], "\r\n")
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimRight(rest[:end], "\r\n")
		}
	}

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	depth := 0
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : j+1]
			}
		}
	}
	return s
}
