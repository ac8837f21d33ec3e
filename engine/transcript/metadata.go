package transcript

import (
	"regexp"
	"strings"
	"time"

	"github.com/intakehq/intake/engine/extractor"
)

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Meeting Date:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Date:\s*([^\n]+)`),
		regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2,4})`),
		regexp.MustCompile(`(\w+ \d{1,2}, \d{4})`),
	}
	attendeePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Attendees?:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Participants?:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Present:\s*([^\n]+)`),
	}
	durationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Duration:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Length:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)(\d+\s*(?:hours?|hrs?|minutes?|mins?))`),
	}
)

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// fallbackMetadata scrapes what it can from the raw text with regexes.
// It fills the fields the extractor would have produced with conservative
// defaults so the pipeline can always proceed.
func fallbackMetadata(text string, now time.Time) *extractor.MeetingMetadata {
	meta := &extractor.MeetingMetadata{
		ClientName:  "Unknown Client",
		MeetingDate: now.Format("2006-01-02"),
		MeetingType: "discovery",
		Summary:     "Meeting transcript processed",
	}
	if date := firstMatch(text, datePatterns); date != "" {
		meta.MeetingDate = date
	}
	if raw := firstMatch(text, attendeePatterns); raw != "" {
		for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' }) {
			name := strings.TrimSpace(part)
			if name != "" && len(name) < 100 {
				meta.Attendees = append(meta.Attendees, name)
			}
		}
	}
	meta.Duration = firstMatch(text, durationPatterns)
	return meta
}
