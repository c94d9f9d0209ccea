package preprocess

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// metaLineMaxLen is the longest line still treated as a label like "Summary:".
const metaLineMaxLen = 40

var (
	headingMarker   = regexp.MustCompile(`^#{1,6}\s*`)
	bulletMarker    = regexp.MustCompile(`^[-•*]\s*`)
	strongAsterisks = regexp.MustCompile(`\*\*(.*?)\*\*`)
	strongUnderline = regexp.MustCompile(`__(.*?)__`)
	emAsterisk      = regexp.MustCompile(`\*(.*?)\*`)
	emUnderline     = regexp.MustCompile(`_(.*?)_`)
	extraBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Clean strips markdown decoration and chatter from a model-written summary
// so it can be re-measured and chunked as plain content.
func Clean(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line = headingMarker.ReplaceAllString(line, "")
		line = bulletMarker.ReplaceAllString(line, "")

		if utf8.RuneCountInString(line) <= metaLineMaxLen && strings.HasSuffix(line, ":") {
			continue
		}
		if strings.Contains(line, "?") {
			continue
		}

		lines = append(lines, stripEmphasis(line))
	}

	cleaned := extraBlankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(cleaned)
}

func stripEmphasis(line string) string {
	line = strongAsterisks.ReplaceAllString(line, "$1")
	line = strongUnderline.ReplaceAllString(line, "$1")
	line = emAsterisk.ReplaceAllString(line, "$1")
	return emUnderline.ReplaceAllString(line, "$1")
}
