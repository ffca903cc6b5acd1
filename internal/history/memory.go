package history

import (
	"context"
	"sync"
)

// Memory is an in-process Repository. It backs tests and deployments
// without a database; snapshots vanish when the process exits.
type Memory struct {
	mu       sync.RWMutex
	uploads  []UploadRecord
	mappings []MappingRecord
	schemas  []SchemaRecord
	exports  []ExportRecord
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SaveUpload(_ context.Context, rec *UploadRecord) error {
	stamp(&rec.Meta)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append([]UploadRecord{*rec}, m.uploads...)
	return nil
}

func (m *Memory) ListUploads(_ context.Context) ([]UploadRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]UploadRecord, len(m.uploads))
	copy(out, m.uploads)
	return out, nil
}

func (m *Memory) GetUpload(_ context.Context, id string) (*UploadRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.uploads {
		if m.uploads[i].ID == id {
			rec := m.uploads[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SaveMapping(_ context.Context, rec *MappingRecord) error {
	stamp(&rec.Meta)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings = append([]MappingRecord{*rec}, m.mappings...)
	return nil
}

func (m *Memory) ListMappings(_ context.Context) ([]MappingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MappingRecord, len(m.mappings))
	copy(out, m.mappings)
	return out, nil
}

func (m *Memory) GetMapping(_ context.Context, id string) (*MappingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.mappings {
		if m.mappings[i].ID == id {
			rec := m.mappings[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SaveSchema(_ context.Context, rec *SchemaRecord) error {
	stamp(&rec.Meta)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemas = append([]SchemaRecord{*rec}, m.schemas...)
	return nil
}

func (m *Memory) ListSchemas(_ context.Context) ([]SchemaRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SchemaRecord, len(m.schemas))
	copy(out, m.schemas)
	return out, nil
}

func (m *Memory) GetSchema(_ context.Context, id string) (*SchemaRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.schemas {
		if m.schemas[i].ID == id {
			rec := m.schemas[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SaveExport(_ context.Context, rec *ExportRecord) error {
	stamp(&rec.Meta)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports = append([]ExportRecord{*rec}, m.exports...)
	return nil
}

func (m *Memory) ListExports(_ context.Context) ([]ExportRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ExportRecord, len(m.exports))
	copy(out, m.exports)
	return out, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = nil
	m.mappings = nil
	m.schemas = nil
	m.exports = nil
	return nil
}
