// Package parser turns OCR text into structured fields with line-oriented
// regular expressions.
package parser

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"docaudit/internal/model"
)

// Result is the structured view of a block of text.
type Result struct {
	Fields    map[string]string
	Sections  []model.Section
	Dates     []string
	Amounts   []string
	LineCount int
	Coverage  float64
}

var (
	lineSplit = regexp.MustCompile(`\r?\n`)
	kvDelim   = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 _./#&()-]{0,60}?)\s*[:=]\s*(\S.*)$`)
	kvSpaced  = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 _./#&()-]{0,60}?)\s{2,}(\S.*)$`)
	nonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.? \d{1,2}, \d{4}\b`),
	}
	// The sign may lead the currency ("-$50.00") or follow it ("$-50.00").
	amountPattern = regexp.MustCompile(`-?(?:[$€£¥]\s?|\b(?:USD|EUR|GBP|JPY|IDR)\s?)?-?\d{1,3}(?:,\d{3})+\.\d{2}\b|-?(?:[$€£¥]\s?|\b(?:USD|EUR|GBP|JPY|IDR)\s?)?-?\d+\.\d{2}\b`)
)

// Parse splits text into lines and classifies each line as a field, a heading or
// plain content.
func Parse(text string) Result {
	res := Result{Fields: map[string]string{}}

	var current *model.Section
	matched := 0
	for _, raw := range lineSplit.Split(text, -1) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		res.LineCount++

		if key, value, ok := splitField(line); ok {
			if _, exists := res.Fields[key]; !exists {
				res.Fields[key] = value
			}
			matched++
		} else if heading, ok := asHeading(line); ok {
			res.Sections = append(res.Sections, model.Section{Heading: heading, Lines: []string{}})
			current = &res.Sections[len(res.Sections)-1]
			matched++
			continue
		}

		if current == nil {
			res.Sections = append(res.Sections, model.Section{Lines: []string{}})
			current = &res.Sections[len(res.Sections)-1]
		}
		current.Lines = append(current.Lines, line)
	}

	res.Dates = findOrdered(text, datePatterns...)
	res.Amounts = findOrdered(text, amountPattern)
	if res.LineCount > 0 {
		res.Coverage = float64(matched) / float64(res.LineCount)
	}
	return res
}

func splitField(line string) (string, string, bool) {
	for _, re := range []*regexp.Regexp{kvDelim, kvSpaced} {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := NormalizeKey(m[1])
		value := strings.TrimSpace(m[2])
		if key == "" || value == "" {
			continue
		}
		return key, value, true
	}
	return "", "", false
}

func asHeading(line string) (string, bool) {
	if strings.HasSuffix(line, ":") {
		h := strings.TrimSpace(strings.TrimSuffix(line, ":"))
		return h, h != ""
	}
	if len(line) > 60 || len(strings.Fields(line)) > 6 {
		return "", false
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return "", false
			}
		}
	}
	return line, hasLetter
}

// NormalizeKey converts a label such as "Invoice #" or "Total Amount" into a
// snake_case key ("invoice_no", "total_amount").
func NormalizeKey(label string) string {
	k := strings.ToLower(strings.TrimSpace(label))
	k = strings.ReplaceAll(k, "#", " no ")
	k = strings.ReplaceAll(k, "&", " and ")
	k = nonAlnum.ReplaceAllString(k, "_")
	return strings.Trim(k, "_")
}

// findOrdered returns the distinct matches of all patterns in order of appearance.
func findOrdered(text string, patterns ...*regexp.Regexp) []string {
	type hit struct {
		pos int
		val string
	}
	var hits []hit
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{pos: loc[0], val: strings.TrimSpace(text[loc[0]:loc[1]])})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]string, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.val]; ok {
			continue
		}
		seen[h.val] = struct{}{}
		out = append(out, h.val)
	}
	return out
}
