package citation

import (
	"strconv"
	"strings"
)

// rawEntry is one @type{...} block located in the input.
type rawEntry struct {
	kind string // lowercased entry type
	body string // text between the outer delimiters
	text string // verbatim text from '@' through the closing delimiter
	err  error  // set when the block never closes
}

// skippedTypes are BibTeX blocks that never describe a paper.
var skippedTypes = map[string]bool{
	"comment":  true,
	"preamble": true,
	"string":   true,
}

// scan locates entry blocks in text. Text outside blocks is ignored, as
// BibTeX does. Scanning stops once limit complete entries are found; a limit
// of 0 scans the whole text.
//
// A block that never closes is recorded with err set and text running up to
// the next line starting with '@', where scanning resumes.
func scan(text string, limit int) []rawEntry {
	var entries []rawEntry
	complete := 0

	i := 0
	for i < len(text) {
		at := strings.IndexByte(text[i:], '@')
		if at < 0 {
			break
		}
		start := i + at
		pos := start + 1

		for pos < len(text) && isIdentByte(text[pos]) {
			pos++
		}
		kind := strings.ToLower(text[start+1 : pos])
		pos = skipSpace(text, pos)

		// An '@' not followed by type and delimiter is stray text (an email
		// address in a note, say).
		if kind == "" || pos >= len(text) || (text[pos] != '{' && text[pos] != '(') {
			i = start + 1
			continue
		}

		end, ok := matchDelimiter(text, pos)
		if !ok {
			stop := len(text)
			if next := strings.Index(text[pos:], "\n@"); next >= 0 {
				stop = pos + next + 1
			}
			if !skippedTypes[kind] {
				entries = append(entries, rawEntry{
					kind: kind,
					text: strings.TrimRight(text[start:stop], " \t\r\n"),
					err:  invalid("unterminated entry starting at offset " + strconv.Itoa(start)),
				})
			}
			i = stop
			continue
		}

		if !skippedTypes[kind] {
			entries = append(entries, rawEntry{
				kind: kind,
				body: text[pos+1 : end],
				text: text[start : end+1],
			})
			complete++
			if limit > 0 && complete >= limit {
				break
			}
		}
		i = end + 1
	}
	return entries
}

// matchDelimiter returns the index of the delimiter closing the one at open.
// Braces nest; a parenthesised entry closes at the first ')' outside braces.
func matchDelimiter(text string, open int) (int, bool) {
	closer := byte('}')
	if text[open] == '(' {
		closer = ')'
	}

	depth := 0
	for i := open + 1; i < len(text); i++ {
		switch c := text[i]; {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closer && depth == 0:
			return i, true
		}
	}
	return 0, false
}

// parseFields parses "name = value, ..." pairs. Segments without '=' are
// skipped rather than failing the whole entry.
func parseFields(s string) map[string]string {
	fields := make(map[string]string)

	pos := 0
	for pos < len(s) {
		pos = skipSpaceAndCommas(s, pos)
		if pos >= len(s) {
			break
		}

		nameStart := pos
		for pos < len(s) && s[pos] != '=' && s[pos] != ',' {
			pos++
		}
		if pos >= len(s) || s[pos] == ',' {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(s[nameStart:pos]))
		pos++ // '='

		var parts []string
		for {
			pos = skipSpace(s, pos)
			var part string
			part, pos = readValue(s, pos)
			parts = append(parts, part)

			pos = skipSpace(s, pos)
			if pos < len(s) && s[pos] == '#' {
				pos++
				continue
			}
			break
		}

		if name != "" {
			fields[name] = collapseSpace(strings.Join(parts, ""))
		}
	}

	return fields
}

// readValue reads one braced, quoted or bare value starting at pos.
func readValue(s string, pos int) (string, int) {
	if pos >= len(s) {
		return "", pos
	}

	switch s[pos] {
	case '{':
		end, ok := matchDelimiter(s, pos)
		if !ok {
			return s[pos+1:], len(s)
		}
		return s[pos+1 : end], end + 1
	case '"':
		depth := 0
		for i := pos + 1; i < len(s); i++ {
			switch s[i] {
			case '{':
				depth++
			case '}':
				if depth > 0 {
					depth--
				}
			case '"':
				if depth == 0 && s[i-1] != '\\' {
					return s[pos+1 : i], i + 1
				}
			}
		}
		return s[pos+1:], len(s)
	default:
		start := pos
		for pos < len(s) && s[pos] != ',' && s[pos] != '#' {
			pos++
		}
		return strings.TrimSpace(s[start:pos]), pos
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && isSpace(s[pos]) {
		pos++
	}
	return pos
}

func skipSpaceAndCommas(s string, pos int) int {
	for pos < len(s) && (isSpace(s[pos]) || s[pos] == ',') {
		pos++
	}
	return pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-'
}
