package syllabus

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// ParsedItem is one curriculum line item produced by the parser, before it is
// assigned an ID and persisted.
type ParsedItem struct {
	Section    string
	Subsection string
	Content    string
	OrderIndex int
}

var (
	numberedSectionRe = regexp.MustCompile(`^\d+\.`)
	subsectionRe      = regexp.MustCompile(`^[a-z0-9]\)|^[a-z0-9]\.\d`)
)

// Parse reads a plain-text curriculum file into ordered items. Section
// headings are ALL-CAPS lines or lines starting with a number and a dot;
// subsection markers start with a letter or digit followed by ")" or a dotted
// index. The non-blank lines between markers accumulate into one item per
// section/subsection block, joined with newlines.
func Parse(r io.Reader) ([]ParsedItem, error) {
	scanner := bufio.NewScanner(r)

	var items []ParsedItem
	var section, subsection string
	var content []string
	order := 0

	flush := func() {
		if section == "" || len(content) == 0 {
			return
		}
		items = append(items, ParsedItem{
			Section:    section,
			Subsection: subsection,
			Content:    strings.Join(content, "\n"),
			OrderIndex: order,
		})
		order++
		content = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case isSectionHeading(line):
			flush()
			section = line
			subsection = ""
		case subsectionRe.MatchString(line):
			flush()
			subsection = line
		case section != "":
			content = append(content, line)
		}
		// Content before any section heading is discarded; the file's
		// preamble is not curriculum.
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// isSectionHeading reports whether the line opens a new section: either a
// numbered heading ("3. METEOROLOGY") or a line whose letters are all upper
// case.
func isSectionHeading(line string) bool {
	if numberedSectionRe.MatchString(line) {
		return true
	}

	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
