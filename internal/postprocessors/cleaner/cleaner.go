// Package cleaner normalises raw extracted text before chunking.
package cleaner

import (
	"regexp"
	"strings"
)

var (
	horizontalSpace = regexp.MustCompile(`[\t\f\v \x{00A0}]+`)
	pageLabelLine   = regexp.MustCompile(`(?i)^page\s*\d+(\s+of\s+\d+)?$`)
	digitsLine      = regexp.MustCompile(`^\d+$`)
)

// Clean normalises raw extracted text.
//
// Line endings are unified to "\n", runs of tabs and spaces become a
// single space, lines that are only a page label ("Page 3") or only
// digits are dropped, and runs of blank lines collapse to one blank
// line. The result is trimmed. Clean never fails: input with no
// content yields "".
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if isPageArtifact(line) {
			continue
		}
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// isPageArtifact reports whether a trimmed line is a page number left
// behind by PDF extraction.
func isPageArtifact(line string) bool {
	if line == "" {
		return false
	}
	return pageLabelLine.MatchString(line) || digitsLine.MatchString(line)
}
