// Package normalize cleans extracted document text into a stable plain-text
// form suitable for chunking. Passes run in a fixed order and the whole
// transform is idempotent: normalizing already-normalized text is a no-op.
package normalize

import (
	"regexp"
	"strings"
)

// Options control the optional normalization passes.
type Options struct {
	// StripTOC removes a leading table-of-contents block when one is
	// detected
	StripTOC bool

	// RedactPII replaces emails, URLs and phone numbers with placeholder
	// tokens
	RedactPII bool

	// DropTables removes [TABLES] sections from the extracted text
	DropTables bool
}

// DefaultOptions returns the options used by the processing pipeline.
func DefaultOptions() Options {
	return Options{
		StripTOC:  true,
		RedactPII: true,
	}
}

// Normalizer applies the cleanup passes.
type Normalizer struct {
	opts Options
}

// New creates a normalizer with the given options.
func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

var (
	// A tag run must not start inside a URL: the leading character may
	// not be ':', '/' or a word character.
	pdfTagRe      = regexp.MustCompile(`(?m)(^|[^:/\w])(?:/\w+)+`)
	pdfVersionRe  = regexp.MustCompile(`%PDF-\d\.\d`)
	pdfObjectRe   = regexp.MustCompile(`\b(obj|endobj|stream|endstream)\b`)
	pdfMetadataRe = regexp.MustCompile(`(?s)<<.*?>>`)

	nonPrintableRe = regexp.MustCompile(`[^\x20-\x7E\n]+`)

	pageNumberRe = regexp.MustCompile(`Page\s?\d+`)
	bulletRe     = regexp.MustCompile(`[\x{2022}\x{25AA}\x{2013}\x{2014}\x{2212}\x{00B7}]`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)

	emailRe = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	urlRe   = regexp.MustCompile(`https?://[^\s]+`)
	// Anchored at '+', '(' or the first digit so surrounding spacing is
	// left in place.
	phoneRe = regexp.MustCompile(`(?:\+\d{1,3}[\s\-]?)?\(?\b\d{2,4}\)?[\s\-]?\d{3,5}[\s\-]?\d{3,5}\b`)

	dotLeaderRe  = regexp.MustCompile(`\.{3,}`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// sectionMarkers maps extractor section tags to their canonical headers.
// Ordered so the output is deterministic.
var sectionMarkers = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`(?i)\[TEXT CONTENT\]`), "\n\n--- TEXT CONTENT ---\n\n"},
	{regexp.MustCompile(`(?i)\[TABLES\]`), "\n\n--- TABLES ---\n\n"},
	{regexp.MustCompile(`(?i)\[EMBEDDED IMAGE OCR\]`), "\n\n--- IMAGES / EMBEDDED OCR ---\n\n"},
	{regexp.MustCompile(`(?i)\[TEXT FROM IMAGE\]`), "\n\n--- IMAGE TEXT ---\n\n"},
	{regexp.MustCompile(`(?i)\[CHART DATA\]`), "\n\n--- CHART DATA ---\n\n"},
	{regexp.MustCompile(`(?i)\[TABLE FROM IMAGE\]`), "\n\n--- IMAGE TABLE ---\n\n"},
}

// Normalize runs the full pass sequence over raw extracted text. The
// output has no control characters, no extraction artifacts, placeholder
// tokens instead of PII when redaction is enabled, and collapsed
// whitespace.
func (n *Normalizer) Normalize(text string) string {
	cleaned := text

	if n.opts.DropTables {
		cleaned = dropTables(cleaned)
	}

	// Extraction artifacts first: PDF tags, version markers, object
	// keywords and metadata dictionaries that leak through text
	// extraction.
	cleaned = pdfTagRe.ReplaceAllString(cleaned, "$1")
	cleaned = pdfVersionRe.ReplaceAllString(cleaned, "")
	cleaned = pdfObjectRe.ReplaceAllString(cleaned, "")
	cleaned = pdfMetadataRe.ReplaceAllString(cleaned, "")

	// Bullets before the non-printable pass, which would otherwise eat
	// the unicode bullet characters.
	cleaned = bulletRe.ReplaceAllString(cleaned, "- ")
	cleaned = nonPrintableRe.ReplaceAllString(cleaned, " ")

	for _, m := range sectionMarkers {
		cleaned = m.pattern.ReplaceAllString(cleaned, m.repl)
	}

	cleaned = pageNumberRe.ReplaceAllString(cleaned, "")
	cleaned = blankLinesRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = trimLines(cleaned)

	if n.opts.RedactPII {
		cleaned = emailRe.ReplaceAllString(cleaned, "<EMAIL>")
		cleaned = urlRe.ReplaceAllString(cleaned, "<URL>")
		cleaned = phoneRe.ReplaceAllString(cleaned, "<PHONE>")
	}

	if n.opts.StripTOC {
		cleaned = stripTOC(cleaned)
	}

	cleaned = dotLeaderRe.ReplaceAllString(cleaned, " ")
	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}

var tablesTagRe = regexp.MustCompile(`(?i)\[TABLES\]`)

// dropTables removes every [TABLES] section: the tag and everything up
// to the next section tag or end of text.
func dropTables(text string) string {
	var sb strings.Builder
	for {
		loc := tablesTagRe.FindStringIndex(text)
		if loc == nil {
			sb.WriteString(text)
			return sb.String()
		}
		sb.WriteString(text[:loc[0]])
		rest := text[loc[1]:]
		next := strings.Index(rest, "[")
		if next < 0 {
			return sb.String()
		}
		text = rest[next:]
	}
}

// trimLines strips leading and trailing whitespace from every line.
func trimLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
