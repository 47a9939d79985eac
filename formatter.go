package folio

import "strings"

// FormatWarnings formats warnings one per line for display or a log file.
// Returns an empty string when there are none.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}

	lines := make([]string, 0, len(warnings))
	for _, w := range warnings {
		lines = append(lines, w.String())
	}

	return strings.Join(lines, "\n") + "\n"
}
