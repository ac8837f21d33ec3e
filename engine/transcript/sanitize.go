package transcript

import (
	"regexp"
	"strings"
)

// defaultChunkSize is the target size for per-chunk extraction passes.
const defaultChunkSize = 10000

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	pageArtifacts  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Page \d+ of \d+`),
		regexp.MustCompile(`(?i)\d+/\d+/\d{2,4}\s+\d{1,2}:\d{2}\s*[AP]M`),
		regexp.MustCompile(`(?i)\[inaudible\]`),
		regexp.MustCompile(`(?i)\[crosstalk\]`),
		regexp.MustCompile(`(?i)\[pause\]`),
	}
)

// Sanitize collapses whitespace and strips page headers and common
// transcription artifacts. Pure; empty input stays empty.
func Sanitize(text string) string {
	out := whitespaceRuns.ReplaceAllString(text, " ")
	for _, re := range pageArtifacts {
		out = re.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// Chunk splits a transcript into pieces of at most maxSize characters,
// cutting only on sentence boundaries. A single sentence longer than
// maxSize becomes its own oversized chunk rather than being split.
func Chunk(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = defaultChunkSize
	}
	sentences := splitSentences(text)
	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence) > maxSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteString(" ")
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// splitSentences cuts after terminal punctuation followed by whitespace,
// keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	var out []string
	rest := text
	for {
		loc := sentenceEnd.FindStringIndex(rest)
		if loc == nil {
			if strings.TrimSpace(rest) != "" {
				out = append(out, strings.TrimSpace(rest))
			}
			return out
		}
		out = append(out, strings.TrimSpace(rest[:loc[0]+1]))
		rest = rest[loc[1]:]
	}
}
