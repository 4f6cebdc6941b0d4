package tasks

import (
	"regexp"
	"strings"
)

// checklistItem matches an unchecked Markdown checkbox such as "- [ ] buy milk".
var checklistItem = regexp.MustCompile(`^-\s+\[\s\]\s+(.+)$`)

// splitLines returns candidate descriptions from free text, one per non-empty
// trimmed line. In checklist mode only unchecked checkbox items are returned.
func splitLines(text string, checklist bool) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if checklist {
			m := checklistItem.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			line = strings.TrimSpace(m[1])
		}
		out = append(out, line)
	}
	return out
}
