package normalize

import "regexp"

var (
	tocHeadingRe = regexp.MustCompile(`(?im)^\s*(?:table of contents|contents|index)\b`)

	// A numbered or roman-numeral section start on its own line marks the
	// end of the table-of-contents block.
	tocEndRe = regexp.MustCompile(`\n\s*(?:[IVX]+|\d+)\.\s`)
)

// stripTOC removes a table-of-contents block: everything from a
// "Contents"-style heading up to the first numbered section start that
// follows it. When no section start is found after the heading the text
// is returned unchanged, since removing to end-of-document would drop
// real content.
func stripTOC(text string) string {
	heading := tocHeadingRe.FindStringIndex(text)
	if heading == nil {
		return text
	}

	rest := text[heading[1]:]
	end := tocEndRe.FindStringIndex(rest)
	if end == nil {
		return text
	}

	return text[:heading[0]] + rest[end[0]:]
}
