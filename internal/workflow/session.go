package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/feedflow/feedflow/internal/feed"
	"github.com/feedflow/feedflow/internal/history"
	"github.com/feedflow/feedflow/internal/mapping"
	"github.com/feedflow/feedflow/internal/schema"
)

// State tracks how far a session has progressed. Mapping edits after
// validation regress the session, so ordering comparisons are meaningful.
type State int

const (
	StateEmpty State = iota
	StateFieldsDrafted
	StateFieldsValidated
	StateCategoriesConfigured
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFieldsDrafted:
		return "fields_drafted"
	case StateFieldsValidated:
		return "fields_validated"
	case StateCategoriesConfigured:
		return "categories_configured"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the state name, not its ordinal.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Session is one feed normalization run: a dataset, its field mapping and
// the schema built on top. All methods serialize on the session mutex, so
// a session is safe for concurrent requests but processes them one at a
// time.
type Session struct {
	ID string

	repo    history.Repository
	catalog []mapping.TargetField
	cfg     Config

	mu      sync.Mutex
	state   State
	dataset *feed.Dataset
	engine  *mapping.Engine
	builder *schema.Builder
}

// State reports the session's current stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Upload parses a feed file and resets the session around it. A previous
// dataset, mapping and schema are discarded. The parsed upload is
// snapshotted with a row preview.
func (s *Session) Upload(ctx context.Context, fileName string, content []byte) (*feed.Dataset, error) {
	dataset, err := feed.ParseFile(fileName, content, s.cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	if dataset.Empty() {
		return nil, ErrEmptyDataset
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dataset = dataset
	s.engine = mapping.NewEngine(s.catalog, dataset.Headers)
	s.builder = nil
	s.state = StateFieldsDrafted

	rec := &history.UploadRecord{
		Meta: history.Meta{Name: fileName},
		File: history.FileInfo{
			Name: dataset.FileName,
			Size: dataset.FileSize,
			Type: dataset.FileType,
		},
		RecordCount: len(dataset.Rows),
		Headers:     dataset.Headers,
		PreviewRows: previewRows(dataset.Rows, s.cfg.PreviewRows),
	}
	if s.cfg.KeepFullRows {
		rec.FullRows = dataset.Rows
	}
	if err := s.repo.SaveUpload(ctx, rec); err != nil {
		return nil, fmt.Errorf("snapshot upload: %w", err)
	}
	return dataset, nil
}

func previewRows(rows []feed.Record, n int) []feed.Record {
	if len(rows) < n {
		n = len(rows)
	}
	return rows[:n]
}

// Dataset returns the current dataset.
func (s *Session) Dataset() (*feed.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	return s.dataset, nil
}

// requireEngine must be called with the session lock held.
func (s *Session) requireEngine() error {
	if s.engine == nil {
		return ErrNoDataset
	}
	return nil
}

// invalidate must be called with the session lock held after any mapping
// mutation: validation no longer holds and a generated schema is stale.
func (s *Session) invalidate() {
	s.builder = nil
	if s.state > StateFieldsDrafted {
		s.state = StateFieldsDrafted
	}
}

// AutoMap suggests mappings by header and field name similarity. Existing
// assignments for non-matching targets survive.
func (s *Session) AutoMap() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return nil, err
	}
	s.engine.AutoMap()
	s.invalidate()
	return s.engine.Mappings(), nil
}

// SetMapping assigns one target field to a source header, or clears it
// with mapping.NotMapped.
func (s *Session) SetMapping(target, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return err
	}
	if err := s.engine.Set(target, source); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Mappings returns the current target-to-source assignments.
func (s *Session) Mappings() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return nil, err
	}
	return s.engine.Mappings(), nil
}

// Unmapped returns the source headers no mapping or custom field uses.
func (s *Session) Unmapped() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return nil, err
	}
	return s.engine.Unmapped(), nil
}

// AddCustomField appends a fresh custom field placeholder.
func (s *Session) AddCustomField() (mapping.CustomField, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return mapping.CustomField{}, err
	}
	cf := s.engine.AddCustomField()
	s.invalidate()
	return cf, nil
}

// UpdateCustomField renames or re-points a custom field.
func (s *Session) UpdateCustomField(id string, patch mapping.CustomFieldPatch) (mapping.CustomField, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return mapping.CustomField{}, err
	}
	cf, err := s.engine.UpdateCustomField(id, patch)
	if err != nil {
		return mapping.CustomField{}, err
	}
	s.invalidate()
	return cf, nil
}

// RemoveCustomField deletes a custom field by id.
func (s *Session) RemoveCustomField(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return err
	}
	if err := s.engine.RemoveCustomField(id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// CustomFields lists the session's custom fields.
func (s *Session) CustomFields() ([]mapping.CustomField, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return nil, err
	}
	return s.engine.CustomFields(), nil
}

// ValidateMappings checks that every required target field is mapped. On
// success the mapping is snapshotted and schema generation unlocks.
func (s *Session) ValidateMappings(ctx context.Context, name string) (*history.MappingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return nil, err
	}
	if err := s.engine.ValidateRequired(); err != nil {
		return nil, err
	}

	if name == "" {
		name = s.dataset.FileName + " mapping"
	}
	rec := &history.MappingRecord{
		Meta:           history.Meta{Name: name},
		SourceFields:   s.dataset.Headers,
		Mappings:       s.engine.Mappings(),
		CustomFields:   s.engine.CustomFields(),
		UnmappedFields: s.engine.Unmapped(),
	}
	if err := s.repo.SaveMapping(ctx, rec); err != nil {
		return nil, fmt.Errorf("snapshot mapping: %w", err)
	}

	if s.state < StateFieldsValidated {
		s.state = StateFieldsValidated
	}
	return rec, nil
}

// GenerateSchema derives schema fields from the validated mapping and
// auto-generates the category table from the mapped category column.
func (s *Session) GenerateSchema(name, description string) (schema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return schema.Schema{}, err
	}
	if s.state < StateFieldsValidated {
		return schema.Schema{}, ErrNotValidated
	}

	if name == "" {
		name = s.dataset.FileName + " schema"
	}
	derived := schema.Generate(s.engine.Mappings(), s.engine.CustomFields(), s.dataset.Headers, s.catalog)
	s.builder = schema.NewBuilder(name, description, derived.Fields)

	if sources := s.categorySources(); len(sources) > 0 {
		s.builder.AutoGenerateCategories(sources)
	}

	s.state = StateCategoriesConfigured
	return s.builder.Schema(), nil
}

// categorySources collects the distinct raw values of the mapped category
// column, in first-seen order. Must be called with the lock held and a
// builder present.
func (s *Session) categorySources() []string {
	for _, f := range s.builder.Schema().Fields {
		if f.Name == "category" && f.SourceField != "" {
			return s.dataset.DistinctValues(f.SourceField)
		}
	}
	return nil
}

// requireBuilder must be called with the session lock held.
func (s *Session) requireBuilder() error {
	if s.builder == nil {
		return ErrSchemaNotGenerated
	}
	return nil
}

// Schema returns the current schema state.
func (s *Session) Schema() (schema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireBuilder(); err != nil {
		return schema.Schema{}, err
	}
	return s.builder.Schema(), nil
}

// EditSchema applies one builder mutation under the session lock. Any
// successful edit on a finalized schema reopens it.
func (s *Session) EditSchema(edit func(*schema.Builder) error) (schema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireBuilder(); err != nil {
		return schema.Schema{}, err
	}
	if err := edit(s.builder); err != nil {
		return schema.Schema{}, err
	}
	if s.state == StateFinalized {
		s.state = StateCategoriesConfigured
	}
	return s.builder.Schema(), nil
}

// RegenerateCategories rebuilds the category table from the dataset after
// a format or separator change, keeping user-edited targets.
func (s *Session) RegenerateCategories() (schema.Schema, error) {
	return s.EditSchema(func(b *schema.Builder) error {
		b.AutoGenerateCategories(s.categorySources())
		return nil
	})
}

// Finalize locks the schema and snapshots it. Validation must have passed;
// the category table may still have untouched entries.
func (s *Session) Finalize(ctx context.Context, name string) (*history.SchemaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireBuilder(); err != nil {
		return nil, err
	}

	sch := s.builder.Schema()
	if name == "" {
		name = sch.Name
	}
	rec := &history.SchemaRecord{
		Meta:   history.Meta{Name: name},
		Schema: sch,
	}
	if err := s.repo.SaveSchema(ctx, rec); err != nil {
		return nil, fmt.Errorf("snapshot schema: %w", err)
	}

	s.state = StateFinalized
	return rec, nil
}

// LoadUpload re-hydrates the session dataset from an upload snapshot. Full
// rows are used when the snapshot retained them; otherwise the preview is
// all that is left.
func (s *Session) LoadUpload(ctx context.Context, id string) (*feed.Dataset, error) {
	rec, err := s.repo.GetUpload(ctx, id)
	if err != nil {
		return nil, err
	}

	rows := rec.FullRows
	if len(rows) == 0 {
		rows = rec.PreviewRows
	}
	dataset := &feed.Dataset{
		Table:    feed.Table{Headers: rec.Headers, Rows: rows},
		FileType: rec.File.Type,
		FileName: rec.File.Name,
		FileSize: rec.File.Size,
	}
	if dataset.Empty() {
		return nil, ErrEmptyDataset
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = dataset
	s.engine = mapping.NewEngine(s.catalog, dataset.Headers)
	s.builder = nil
	s.state = StateFieldsDrafted
	return dataset, nil
}

// LoadMapping restores a mapping snapshot verbatim onto the current
// dataset. The restored mapping still has to be validated again.
func (s *Session) LoadMapping(ctx context.Context, id string) (*history.MappingRecord, error) {
	rec, err := s.repo.GetMapping(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return nil, err
	}
	s.engine.Restore(rec.Mappings, rec.CustomFields)
	s.invalidate()
	return rec, nil
}

// LoadSchema restores a schema snapshot verbatim. The session must hold a
// validated mapping; the restored schema reopens for edits.
func (s *Session) LoadSchema(ctx context.Context, id string) (schema.Schema, error) {
	rec, err := s.repo.GetSchema(ctx, id)
	if err != nil {
		return schema.Schema{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireEngine(); err != nil {
		return schema.Schema{}, err
	}
	if s.state < StateFieldsValidated {
		return schema.Schema{}, ErrNotValidated
	}
	s.builder = schema.RestoreBuilder(rec.Schema)
	s.state = StateCategoriesConfigured
	return s.builder.Schema(), nil
}
