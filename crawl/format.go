package crawl

import "fmt"

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatEvent renders a progress event as one status line, with the URL
// shortened to width characters.
func FormatEvent(e ProgressEvent, width int) string {
	url := TruncateURL(e.URL, width)
	var line string
	switch {
	case e.Total > 0:
		line = fmt.Sprintf("[%d/%d] %s %s", e.Chapter, e.Total, e.State, url)
	default:
		line = fmt.Sprintf("%s %s", e.State, url)
	}
	if e.Err != nil {
		line += ": " + e.Err.Error()
	}
	return line
}
