package latex

import (
	"fmt"
	"strings"
	"unicode"
)

var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Escape makes s safe to typeset as literal text. Control characters are
// dropped; line breaks and tabs become spaces.
func Escape(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	return escaper.Replace(s)
}

// EscapeURL makes u safe as the target of \href. Hash and percent signs
// are backslash-escaped; other characters with meaning to TeX, spaces and
// non-ASCII bytes are percent-encoded.
func EscapeURL(u string) string {
	var b strings.Builder
	for i := 0; i < len(u); i++ {
		c := u[i]
		switch {
		case c == '#':
			b.WriteString(`\#`)
		case c == '%':
			b.WriteString(`\%`)
		case c <= ' ' || c >= 0x7f || strings.IndexByte(`\{}^~$_&"<>`, c) >= 0:
			fmt.Fprintf(&b, `\%%%02X`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// guard protects text placed right after \\, \item or an environment opening,
// where a leading "[" or "*" would be read as an argument.
func guard(s string) string {
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "*") {
		return "{}" + s
	}
	return s
}
