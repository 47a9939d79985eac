package goquery

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	spaceRE = regexp.MustCompile(`[\s\x{00a0}]+`)

	// artifactRE matches conversion debris left in archive pages by old
	// HTML generators.
	artifactRE = regexp.MustCompile(`(?i)\b(?:t2h-[a-z0-9_-]+|vol=\d+|pg=\d+|src=\S+|type=endnote|type=)`)

	// bracketRE matches a bracket-style note reference in running text.
	bracketRE = regexp.MustCompile(`\[(\d{1,3})\]`)

	// labelRE matches the visible label at the start of a note definition:
	// "[3]", "(3)", "3.", "3)" or "3 ".
	labelRE = regexp.MustCompile(`^\s*\*?\s*(?:\[(\d{1,3})\]|\((\d{1,3})\)|(\d{1,3})(?:[.):]|\s|$))\s*`)

	// markerTextRE matches anchor text that looks like a note marker.
	markerTextRE = regexp.MustCompile(`^\s*[\[(]?\s*(\d{1,3})\s*[\]).:]?\s*$`)
)

// cleanText normalizes a text node. Artifact tokens and control characters
// are removed, whitespace runs collapse to a single space and the result is
// NFC-normalized. Leading and trailing whitespace survive as one space.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = artifactRE.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = spaceRE.ReplaceAllString(s, " ")
	return norm.NFC.String(s)
}

// squash collapses whitespace and trims.
func squash(s string) string {
	return strings.TrimSpace(cleanText(s))
}

// parseLabel returns the note label at the start of s and the rest of s.
func parseLabel(s string) (label string, rest string, ok bool) {
	m := labelRE.FindStringSubmatchIndex(s)
	if m == nil {
		return "", s, false
	}
	for i := 2; i < len(m); i += 2 {
		if m[i] >= 0 {
			return normalizeNumber(s[m[i]:m[i+1]]), s[m[1]:], true
		}
	}
	return "", s, false
}

// markerLabel returns the number shown by anchor text such as "[3]" or "3".
func markerLabel(text string) (string, bool) {
	m := markerTextRE.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return normalizeNumber(m[1]), true
}

// normalizeNumber drops leading zeros so "03" and "3" compare equal.
func normalizeNumber(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return digits
	}
	return strconv.Itoa(n)
}

// wordCount counts whitespace-separated words.
func wordCount(s string) int {
	return len(strings.Fields(s))
}
