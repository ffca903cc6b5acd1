package feed

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ParseJSON parses JSON content into the uniform table model.
//
// An array of objects becomes one row per element; headers are the union
// of all object keys in first-seen order, which requires walking the
// decoder token stream instead of iterating Go maps. A single top-level
// object becomes exactly one row. Any other shape (empty array, scalar,
// null) and any malformed input degrade to an empty table rather than an
// error.
//
// Values are coerced to strings: nested objects and arrays are re-emitted
// as compact JSON, null and missing keys become "".
func ParseJSON(content string) Table {
	data := []byte(content)

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err == nil && len(elements) > 0 {
		return tableFromObjects(elements)
	}

	// json.Unmarshal accepts "null" into a slice without error, so a nil
	// result falls through to the single-object path and fails there.
	if members, ok := decodeObject(json.RawMessage(data)); ok && len(members) > 0 {
		headers := make([]string, 0, len(members))
		row := make(Record, len(members))
		for _, m := range members {
			headers = append(headers, m.key)
			row[m.key] = m.value
		}
		return Table{Headers: headers, Rows: []Record{row}}
	}

	return emptyTable()
}

func tableFromObjects(elements []json.RawMessage) Table {
	var headers []string
	seen := make(map[string]bool)
	parsed := make([][]member, len(elements))

	for i, element := range elements {
		members, ok := decodeObject(element)
		if !ok {
			// Non-object elements contribute no keys but still occupy
			// a row, matching the row count of the input array.
			continue
		}
		parsed[i] = members
		for _, m := range members {
			if !seen[m.key] {
				seen[m.key] = true
				headers = append(headers, m.key)
			}
		}
	}

	rows := make([]Record, len(elements))
	for i := range elements {
		row := make(Record, len(headers))
		for _, h := range headers {
			row[h] = ""
		}
		for _, m := range parsed[i] {
			row[m.key] = m.value
		}
		rows[i] = row
	}

	if len(headers) == 0 {
		headers = []string{}
	}
	return Table{Headers: headers, Rows: rows}
}

// member is one object entry in source order.
type member struct {
	key   string
	value string
}

// decodeObject parses a JSON object preserving key order. Returns false
// when raw is not a well-formed object.
func decodeObject(raw json.RawMessage) ([]member, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	members := []member{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		members = append(members, member{key: key, value: stringifyValue(value)})
	}

	// Consume the closing brace so truncated objects are rejected.
	if _, err := dec.Token(); err != nil {
		return nil, false
	}

	return members, true
}

// stringifyValue converts a raw JSON value to its string form: strings are
// unquoted, null becomes "", objects and arrays are compacted, numbers and
// booleans keep their literal text.
func stringifyValue(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return ""
		}
		return s
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(trimmed)); err != nil {
			return ""
		}
		return buf.String()
	default:
		return trimmed
	}
}
