package latex

import (
	"regexp"
	"strings"

	"github.com/fwojciec/folio"
)

var (
	envRE = regexp.MustCompile(`\\(begin|end)\{([^{}]*)\}`)

	// strayOptionRE matches body text that opens with "[" right after an
	// environment taking an optional argument.
	strayOptionRE = regexp.MustCompile(`\\begin\{(quoting|verse)\}\s*\[`)
)

// Validate checks that src is well formed: braces balance outside
// comments, every \begin has a matching \end, and no control characters
// other than newlines and tabs appear. Text starting with "[" must not
// follow the opening of a quoting or verse environment.
func Validate(src string) error {
	if m := strayOptionRE.FindStringSubmatchIndex(src); m != nil {
		line := strings.Count(src[:m[0]], "\n") + 1
		return folio.Errorf(folio.ESERIALIZE, "%s on line %d opens with a bracket read as an option", src[m[2]:m[3]], line)
	}
	var code strings.Builder
	depth, line := 0, 1
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\n':
			line++
		case c == '\t' || c == '\r':
		case c < 0x20 || c == 0x7f:
			return folio.Errorf(folio.ESERIALIZE, "control character %#x on line %d", c, line)
		}

		switch c {
		case '\\':
			code.WriteByte(c)
			if i+1 < len(src) && src[i+1] != '\n' {
				i++
				code.WriteByte(src[i])
			}
			continue
		case '%':
			for i+1 < len(src) && src[i+1] != '\n' {
				i++
			}
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return folio.Errorf(folio.ESERIALIZE, "unbalanced closing brace on line %d", line)
			}
		}
		code.WriteByte(c)
	}
	if depth != 0 {
		return folio.Errorf(folio.ESERIALIZE, "%d unclosed braces", depth)
	}

	var stack []string
	for _, m := range envRE.FindAllStringSubmatch(code.String(), -1) {
		if m[1] == "begin" {
			stack = append(stack, m[2])
			continue
		}
		if len(stack) == 0 || stack[len(stack)-1] != m[2] {
			return folio.Errorf(folio.ESERIALIZE, "unexpected \\end{%s}", m[2])
		}
		stack = stack[:len(stack)-1]
	}
	if len(stack) > 0 {
		return folio.Errorf(folio.ESERIALIZE, "unclosed environment %s", stack[len(stack)-1])
	}
	return nil
}

// breakLines breaks lines longer than limit at spaces.
func breakLines(src string, limit int) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		for len(l) > limit {
			cut := strings.LastIndexByte(l[:limit], ' ')
			if cut <= 0 {
				cut = strings.IndexByte(l[limit:], ' ')
				if cut < 0 {
					break
				}
				cut += limit
			}
			out = append(out, l[:cut])
			l = l[cut+1:]
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
