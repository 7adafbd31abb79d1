package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// calloutBase is the Private Use Area origin for callout placeholders: callout
// N travels through Goldmark and chroma as the single rune calloutBase+N.
const (
	calloutBase = '\uE100'
	maxCallout  = 99
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Control characters that are not allowed in XML 1.0 documents.
	xmlIllegal = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

	fenceOpen     = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
	calloutTail   = regexp.MustCompile(`(?:[ \t]*<\d{1,2}>)+[ \t]*$`)
	calloutMarker = regexp.MustCompile(`<(\d{1,2})>`)
)

// preprocess normalizes line endings, drops characters XML cannot carry,
// limits blank lines and encodes code callout markers.
func preprocess(content string) string {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	content = xmlIllegal.ReplaceAllString(content, "")
	content = multipleBlankLines.ReplaceAllString(content, "\n\n")
	return encodeCallouts(content)
}

// encodeCallouts replaces trailing <N> markers on fenced code lines with
// placeholder runes.
func encodeCallouts(content string) string {
	lines := strings.Split(content, "\n")
	fence := ""

	for i, line := range lines {
		if fence == "" {
			if m := fenceOpen.FindStringSubmatch(line); m != nil {
				fence = m[1]
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == "" {
			fence = ""
			continue
		}

		loc := calloutTail.FindStringIndex(line)
		if loc == nil {
			continue
		}
		tail := calloutMarker.ReplaceAllStringFunc(line[loc[0]:], func(m string) string {
			n, _ := strconv.Atoi(m[1 : len(m)-1])
			if n < 1 || n > maxCallout {
				return m
			}
			return string(rune(calloutBase + n))
		})
		lines[i] = line[:loc[0]] + tail
	}

	return strings.Join(lines, "\n")
}

// calloutNumber returns N for a callout placeholder rune.
func calloutNumber(r rune) (int, bool) {
	n := int(r - calloutBase)
	return n, n >= 1 && n <= maxCallout
}
