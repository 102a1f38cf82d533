package extract

import (
	"strings"

	"github.com/araddon/dateparse"
)

// eventTimeLayout is the fixed output form for carrier event timestamps.
const eventTimeLayout = "2006-01-02 15:04"

// FormatEventTime reformats raw to "YYYY-MM-DD HH:MM" when it parses as a
// date. Unparseable text is preserved verbatim, never dropped; carriers
// sometimes publish free-text in date cells and that is still information.
func FormatEventTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseLocal(raw)
	if err != nil {
		return raw
	}
	return t.Format(eventTimeLayout)
}
