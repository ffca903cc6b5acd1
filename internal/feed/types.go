// Package feed parses raw affiliate feed files (CSV, JSON, XML) into a
// uniform row/column model. This package has no dependencies on the rest
// of the pipeline and can be used standalone.
package feed

// FileType identifies the feed format detected from a file name.
type FileType string

const (
	FileTypeCSV   FileType = "csv"
	FileTypeJSON  FileType = "json"
	FileTypeXML   FileType = "xml"
	FileTypeOther FileType = "other"
)

// Record is one normalized source row. Every value is a string; object and
// array values from structured formats are carried as compact JSON text.
// Every header of the enclosing Table is present as a key, missing values
// are the empty string, never absent.
type Record map[string]string

// Table is the uniform output of all format parsers: an ordered header set
// plus the rows keyed by those headers.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Record `json:"rows"`
}

// Empty reports whether the table carries no headers and no rows.
// Parsers degrade to an empty table on malformed input instead of
// returning an error, so callers must treat this as the failure signal.
func (t Table) Empty() bool {
	return len(t.Headers) == 0 && len(t.Rows) == 0
}

// DistinctValues returns the unique non-empty values of one column in
// first-seen row order.
func (t Table) DistinctValues(header string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, row := range t.Rows {
		v := row[header]
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}

// Dataset is a parsed upload: the uniform table plus file provenance.
// Created once per upload and immutable thereafter.
type Dataset struct {
	Table
	FileType FileType `json:"fileType"`
	FileName string   `json:"fileName"`
	FileSize int64    `json:"fileSizeBytes"`
}

func emptyTable() Table {
	return Table{Headers: []string{}, Rows: []Record{}}
}
