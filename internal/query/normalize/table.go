package normalize

import "strings"

// Upstream "tables" arrive as newline-separated, tab-delimited text with
// inconsistent headers. findRow locates the header line by keyword match and
// returns the first data line after it with at least minCols columns. When no
// header matches, it falls back to scanning every line for the first one
// meeting the column threshold. Rows with fewer columns are rejected.
func findRow(raw string, headerKeywords []string, minCols int) ([]string, bool) {
	lines := strings.Split(raw, "\n")

	headerIdx := -1
	for i, line := range lines {
		if matchesHeader(line, headerKeywords) {
			headerIdx = i
			break
		}
	}

	if headerIdx >= 0 {
		for _, line := range lines[headerIdx+1:] {
			if cols := splitColumns(line); len(cols) >= minCols {
				return cols, true
			}
		}
	}

	// No header (or no data after it): first line anywhere with enough columns.
	for i, line := range lines {
		if i == headerIdx {
			continue
		}
		if cols := splitColumns(line); len(cols) >= minCols {
			return cols, true
		}
	}
	return nil, false
}

func matchesHeader(line string, keywords []string) bool {
	lower := strings.ToLower(line)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func splitColumns(line string) []string {
	parts := strings.Split(line, "\t")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cols = append(cols, p)
		}
	}
	return cols
}

// col returns the trimmed column at index i, or empty when out of range.
func col(cols []string, i int) string {
	if i < 0 || i >= len(cols) {
		return ""
	}
	return cols[i]
}

// findLineContaining returns the first full line whose lowercase form
// contains the keyword.
func findLineContaining(raw, keyword string) string {
	for _, line := range strings.Split(raw, "\n") {
		if strings.Contains(strings.ToLower(line), strings.ToLower(keyword)) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
