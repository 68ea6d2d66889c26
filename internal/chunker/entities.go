package chunker

import (
	"regexp"
	"strings"
)

// EntityExtractor pulls the phrases a reviewer would anchor on out of a
// chunk: amounts, percentages, dates, organizations and legal references.
type EntityExtractor struct {
	moneyRegex   *regexp.Regexp
	percentRegex *regexp.Regexp
	dateRegex    *regexp.Regexp
	orgRegex     *regexp.Regexp
	lawRegex     *regexp.Regexp
	numberRegex  *regexp.Regexp
}

// NewEntityExtractor creates an extractor with the default patterns.
func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{
		moneyRegex:   regexp.MustCompile(`[$€£]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:thousand|million|billion|trillion|[kmbn]n?))?|\b\d[\d,]*(?:\.\d+)?\s?(?:USD|EUR|GBP|CHF|dollars?|euros?)\b`),
		percentRegex: regexp.MustCompile(`\b\d+(?:\.\d+)?\s?(?:%|percent|per cent|bps|basis points)`),
		dateRegex:    regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b|\b\d{1,2}\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b|\b(?:19|20)\d{2}\b`),
		orgRegex:     regexp.MustCompile(`\b(?:[A-Z][A-Za-z&.-]+\s)+(?:Inc|Ltd|LLC|LLP|LP|Corp|Corporation|Company|Group|Holdings|Partners|Capital|Fund|Bank|AG|GmbH|plc|SA|NV)\.?\b`),
		lawRegex:     regexp.MustCompile(`\b(?:[A-Z][A-Za-z]+\s)+Act(?:\s(?:19|20)\d{2})?\b|\b(?:Article|Section|Clause|Regulation|Directive)\s+\d+[A-Za-z]*\b`),
		numberRegex:  regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+(?:\.\d+)?\b`),
	}
}

// Extract returns the distinct entities found in text, in first-seen
// order.
func (e *EntityExtractor) Extract(text string) []string {
	if text == "" {
		return nil
	}

	var entities []string
	for _, re := range []*regexp.Regexp{
		e.moneyRegex,
		e.percentRegex,
		e.dateRegex,
		e.orgRegex,
		e.lawRegex,
		e.numberRegex,
	} {
		entities = append(entities, re.FindAllString(text, -1)...)
	}

	return dedupe(entities)
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(entities []string) []string {
	seen := make(map[string]struct{}, len(entities))
	var out []string
	for _, entity := range entities {
		entity = strings.TrimSpace(entity)
		if entity == "" {
			continue
		}
		key := strings.ToLower(entity)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entity)
	}
	return out
}
