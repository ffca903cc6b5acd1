package feed

import "strings"

// ParseCSV parses CSV content into the uniform table model.
//
// The header row is the first non-blank line, split on "," with each cell
// trimmed. Data lines go through a quote-aware scanner: a '"' not preceded
// by a backslash toggles the in-quotes state, a ',' splits fields only
// outside quotes, and the quote characters themselves are not emitted.
// This deliberately does NOT implement RFC 4180 `""` escaping; upstream
// feed tooling relies on the toggle behavior.
//
// Rows shorter than the header pad missing cells with "". Empty input
// yields an empty table.
func ParseCSV(content string) Table {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return emptyTable()
	}

	rawHeaders := strings.Split(lines[0], ",")
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := scanLine(line)
		row := make(Record, len(headers))
		for i, header := range headers {
			if i < len(values) {
				row[header] = values[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return Table{Headers: headers, Rows: rows}
}

// scanLine tokenizes one CSV data line with the quote-toggle rule.
func scanLine(line string) []string {
	var values []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"' && (i == 0 || line[i-1] != '\\'):
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	values = append(values, strings.TrimSpace(current.String()))
	return values
}
