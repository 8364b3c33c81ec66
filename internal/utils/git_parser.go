package utils

import (
	"strings"
)

// ParseFileList merges newline-separated path listings from git, dropping
// blank lines and duplicates while keeping first-seen order.
func ParseFileList(outputs ...string) []string {
	files := []string{}
	seen := make(map[string]bool)

	for _, output := range outputs {
		for line := range strings.SplitSeq(strings.TrimSpace(output), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || seen[line] {
				continue
			}
			seen[line] = true
			files = append(files, line)
		}
	}

	return files
}
