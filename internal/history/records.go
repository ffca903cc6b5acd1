package history

import (
	"time"

	"github.com/feedflow/feedflow/internal/feed"
	"github.com/feedflow/feedflow/internal/mapping"
	"github.com/feedflow/feedflow/internal/schema"
)

// Kind partitions snapshots by pipeline stage.
type Kind string

const (
	KindUpload  Kind = "upload"
	KindMapping Kind = "mapping"
	KindSchema  Kind = "schema"
	KindExport  Kind = "export"
)

// Meta carries the fields common to every snapshot.
type Meta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// FileInfo describes the uploaded source file.
type FileInfo struct {
	Name string        `json:"name"`
	Size int64         `json:"size"`
	Type feed.FileType `json:"type"`
}

// UploadRecord is a snapshot of a parsed upload. PreviewRows holds the
// first rows for listings; FullRows is kept only when full retention is
// enabled and allows re-hydrating the complete dataset later.
type UploadRecord struct {
	Meta
	File        FileInfo      `json:"file"`
	RecordCount int           `json:"recordCount"`
	Headers     []string      `json:"headers"`
	PreviewRows []feed.Record `json:"previewRows"`
	FullRows    []feed.Record `json:"fullRows,omitempty"`
}

// MappingRecord is a snapshot of a validated field mapping.
type MappingRecord struct {
	Meta
	SourceFields   []string              `json:"sourceFields"`
	Mappings       map[string]string     `json:"mappings"`
	CustomFields   []mapping.CustomField `json:"customFields"`
	UnmappedFields []string              `json:"unmappedFields"`
}

// SchemaRecord is a snapshot of a finalized schema.
type SchemaRecord struct {
	Meta
	Schema schema.Schema `json:"schema"`
}

// ExportRecord notes one produced export file.
type ExportRecord struct {
	Meta
	ExportType  string `json:"exportType"`
	RecordCount int    `json:"recordCount"`
	FileName    string `json:"fileName"`
}
