package workflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/feedflow/feedflow/internal/feed"
	"github.com/feedflow/feedflow/internal/history"
	"github.com/feedflow/feedflow/internal/schema"
)

// Export is a produced feed file.
type Export struct {
	FileName    string
	ContentType string
	RecordCount int
	Data        []byte
}

// Transform projects the dataset onto the schema: every schema field
// becomes an output column fed by its source header, and the category
// column is rewritten through the category mapping table. Sources the
// table does not know are normalized on the fly.
func Transform(dataset *feed.Dataset, sch schema.Schema) ([]string, []feed.Record) {
	headers := make([]string, 0, len(sch.Fields))
	for _, f := range sch.Fields {
		headers = append(headers, f.Name)
	}

	categoryTargets := make(map[string]string, len(sch.CategoryMappings))
	for _, m := range sch.CategoryMappings {
		categoryTargets[m.SourceCategory] = m.TargetCategory
	}

	rows := make([]feed.Record, 0, len(dataset.Rows))
	for _, src := range dataset.Rows {
		out := make(feed.Record, len(sch.Fields))
		for _, f := range sch.Fields {
			value := ""
			if f.SourceField != "" {
				value = src[f.SourceField]
			}
			if f.Name == "category" && value != "" {
				if target, ok := categoryTargets[value]; ok {
					value = target
				} else {
					value = schema.NormalizeCategory(value, sch.CategoryFormat, sch.CategorySeparator)
				}
			}
			out[f.Name] = value
		}
		rows = append(rows, out)
	}
	return headers, rows
}

// WriteCSV renders transformed rows as RFC 4180 CSV with a header line.
func WriteCSV(headers []string, rows []feed.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	line := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			line[i] = row[h]
		}
		if err := w.Write(line); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJSON renders transformed rows as an indented JSON array.
func WriteJSON(rows []feed.Record) ([]byte, error) {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json export: %w", err)
	}
	return data, nil
}

// Export transforms the dataset through the finalized schema and renders
// it in the requested format ("csv" or "json"). Each export is recorded
// in history.
func (s *Session) Export(ctx context.Context, format string) (*Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	if err := s.requireBuilder(); err != nil {
		return nil, err
	}
	if s.state < StateFinalized {
		return nil, ErrNotFinalized
	}

	sch := s.builder.Schema()
	headers, rows := Transform(s.dataset, sch)

	base := strings.TrimSuffix(s.dataset.FileName, filepath.Ext(s.dataset.FileName))
	if base == "" {
		base = "feed"
	}

	var out *Export
	switch format {
	case "csv":
		data, err := WriteCSV(headers, rows)
		if err != nil {
			return nil, err
		}
		out = &Export{FileName: base + "_normalized.csv", ContentType: "text/csv", Data: data}
	case "json":
		data, err := WriteJSON(rows)
		if err != nil {
			return nil, err
		}
		out = &Export{FileName: base + "_normalized.json", ContentType: "application/json", Data: data}
	default:
		return nil, fmt.Errorf("unsupported export type %q", format)
	}
	out.RecordCount = len(rows)

	rec := &history.ExportRecord{
		Meta:        history.Meta{Name: out.FileName},
		ExportType:  format,
		RecordCount: out.RecordCount,
		FileName:    out.FileName,
	}
	if err := s.repo.SaveExport(ctx, rec); err != nil {
		return nil, fmt.Errorf("snapshot export: %w", err)
	}
	return out, nil
}
