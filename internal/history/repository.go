package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a snapshot id does not exist for the
// requested kind.
var ErrNotFound = errors.New("history record not found")

// Repository stores pipeline snapshots. Implementations own the storage
// details; the pipeline only ever talks to this interface. Lists are
// ordered newest first.
type Repository interface {
	SaveUpload(ctx context.Context, rec *UploadRecord) error
	ListUploads(ctx context.Context) ([]UploadRecord, error)
	GetUpload(ctx context.Context, id string) (*UploadRecord, error)

	SaveMapping(ctx context.Context, rec *MappingRecord) error
	ListMappings(ctx context.Context) ([]MappingRecord, error)
	GetMapping(ctx context.Context, id string) (*MappingRecord, error)

	SaveSchema(ctx context.Context, rec *SchemaRecord) error
	ListSchemas(ctx context.Context) ([]SchemaRecord, error)
	GetSchema(ctx context.Context, id string) (*SchemaRecord, error)

	SaveExport(ctx context.Context, rec *ExportRecord) error
	ListExports(ctx context.Context) ([]ExportRecord, error)

	// Clear removes every stored snapshot.
	Clear(ctx context.Context) error
}

// stamp fills in the id and timestamp for a snapshot about to be saved.
func stamp(m *Meta) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
}
