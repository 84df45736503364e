package normalize

import (
	"regexp"
	"time"

	"padron/internal/query/models"
)

// Upstream registries print dates as DD/MM/YYYY inside free text.
var dateToken = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)

const dateLayout = "02/01/2006"

// scanDates returns every date-shaped token in raw text, in order of
// appearance. Known precision gap: when the blob contains unrelated dates
// before the relevant table, the first tokens win; kept for compatibility
// with observed upstream behavior.
func scanDates(raw string) []string {
	return dateToken.FindAllString(raw, -1)
}

// dateField keeps the original display string and attaches a parsed form when
// the token is a real calendar date. Unparsable dates are preserved as
// display-only, never dropped.
func dateField(display string) models.DateField {
	f := models.DateField{Display: display}
	if t, err := time.Parse(dateLayout, display); err == nil {
		f.Parsed = &t
	}
	return f
}

// fallbackDates takes the first two date tokens from the raw blob as a
// start/end pair. Either may be empty when fewer tokens exist.
func fallbackDates(raw string) (models.DateField, models.DateField) {
	tokens := scanDates(raw)
	var start, end models.DateField
	if len(tokens) > 0 {
		start = dateField(tokens[0])
	}
	if len(tokens) > 1 {
		end = dateField(tokens[1])
	}
	return start, end
}
