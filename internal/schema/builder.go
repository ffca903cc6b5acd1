package schema

import (
	"fmt"
	"strings"

	"github.com/feedflow/feedflow/internal/mapping"
)

// FieldPatch carries partial updates for a schema field. Nil members are
// left untouched.
type FieldPatch struct {
	Type        *mapping.FieldType `json:"type,omitempty"`
	Required    *bool              `json:"required,omitempty"`
	Description *string            `json:"description,omitempty"`
	SourceField *string            `json:"sourceField,omitempty"`
}

// Builder holds the editable schema state for one session. It is not safe
// for concurrent use; the owning session serializes access.
type Builder struct {
	name              string
	description       string
	fields            []Field
	categoryFormat    CategoryFormat
	categorySeparator string
	categoryMappings  []CategoryMapping
}

// NewBuilder returns a builder seeded with derived fields and the default
// category settings.
func NewBuilder(name, description string, fields []Field) *Builder {
	b := &Builder{
		name:              name,
		description:       description,
		categoryFormat:    FormatHierarchical,
		categorySeparator: DefaultCategorySeparator,
	}
	b.fields = append(b.fields, fields...)
	return b
}

// RestoreBuilder rebuilds a builder from a previously captured schema.
func RestoreBuilder(s Schema) *Builder {
	b := &Builder{
		name:              s.Name,
		description:       s.Description,
		categoryFormat:    s.CategoryFormat,
		categorySeparator: s.CategorySeparator,
	}
	if !b.categoryFormat.Valid() {
		b.categoryFormat = FormatHierarchical
	}
	if b.categorySeparator == "" {
		b.categorySeparator = DefaultCategorySeparator
	}
	b.fields = append(b.fields, s.Fields...)
	b.categoryMappings = append(b.categoryMappings, s.CategoryMappings...)
	return b
}

func (b *Builder) SetName(name string)        { b.name = name }
func (b *Builder) SetDescription(desc string) { b.description = desc }

// SetCategoryFormat switches between hierarchical and flat output. Existing
// category mappings are kept; callers regenerate them if desired.
func (b *Builder) SetCategoryFormat(format CategoryFormat) error {
	if !format.Valid() {
		return fmt.Errorf("unknown category format %q", format)
	}
	b.categoryFormat = format
	return nil
}

func (b *Builder) SetCategorySeparator(sep string) {
	if sep == "" {
		sep = DefaultCategorySeparator
	}
	b.categorySeparator = sep
}

func (b *Builder) findField(name string) int {
	for i := range b.fields {
		if b.fields[i].Name == name {
			return i
		}
	}
	return -1
}

// AddField appends a new field. Names must be unique across the schema.
func (b *Builder) AddField(f Field) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("field name is empty")
	}
	if b.findField(f.Name) >= 0 {
		return &DuplicateNameError{Name: f.Name}
	}
	if !f.Type.Valid() {
		f.Type = mapping.TypeString
	}
	b.fields = append(b.fields, f)
	return nil
}

// QuickAddField promotes an unmapped source header into an optional custom
// field. The field name is the slugged header, de-duplicated with a numeric
// suffix when taken.
func (b *Builder) QuickAddField(sourceField string) (Field, error) {
	base := slugify(sourceField)
	if base == "" {
		return Field{}, fmt.Errorf("source field name is empty")
	}
	name := base
	for n := 2; b.findField(name) >= 0; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	f := Field{
		Name:          name,
		Type:          mapping.TypeString,
		Required:      false,
		Description:   fmt.Sprintf("Added from source field %q", sourceField),
		SourceField:   sourceField,
		IsCustomField: true,
	}
	b.fields = append(b.fields, f)
	return f, nil
}

// RemoveField deletes a field by name. Core fields (required, non-custom)
// cannot be removed.
func (b *Builder) RemoveField(name string) error {
	i := b.findField(name)
	if i < 0 {
		return ErrFieldNotFound
	}
	if b.fields[i].core() {
		return &ProtectedFieldError{Name: name}
	}
	b.fields = append(b.fields[:i], b.fields[i+1:]...)
	return nil
}

// UpdateField applies a patch to the named field. Clearing required on a
// core field is rejected.
func (b *Builder) UpdateField(name string, patch FieldPatch) error {
	i := b.findField(name)
	if i < 0 {
		return ErrFieldNotFound
	}
	f := &b.fields[i]
	if patch.Required != nil && !*patch.Required && f.core() {
		return &ProtectedFieldError{Name: name}
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return fmt.Errorf("unknown field type %q", *patch.Type)
		}
		f.Type = *patch.Type
	}
	if patch.Required != nil {
		f.Required = *patch.Required
	}
	if patch.Description != nil {
		f.Description = *patch.Description
	}
	if patch.SourceField != nil {
		f.SourceField = *patch.SourceField
	}
	return nil
}

// AutoGenerateCategories recomputes the category table from the given source
// values, keeping targets the user already set.
func (b *Builder) AutoGenerateCategories(sources []string) {
	b.categoryMappings = AutoGenerateCategories(sources, b.categoryMappings, b.categoryFormat, b.categorySeparator)
}

// SetCategoryTarget overwrites the target for one known source category.
func (b *Builder) SetCategoryTarget(source, target string) error {
	for i := range b.categoryMappings {
		if b.categoryMappings[i].SourceCategory == source {
			b.categoryMappings[i].TargetCategory = target
			return nil
		}
	}
	return ErrCategoryNotFound
}

// AddCategoryMapping inserts a source category the dataset did not surface.
// A duplicate source updates the existing entry instead.
func (b *Builder) AddCategoryMapping(source, target string) error {
	source = strings.TrimSpace(source)
	if source == "" {
		return fmt.Errorf("source category is empty")
	}
	if target == "" {
		target = NormalizeCategory(source, b.categoryFormat, b.categorySeparator)
	}
	if err := b.SetCategoryTarget(source, target); err == nil {
		return nil
	}
	b.categoryMappings = append(b.categoryMappings, CategoryMapping{SourceCategory: source, TargetCategory: target})
	return nil
}

// RemoveCategoryMapping drops one source category from the table.
func (b *Builder) RemoveCategoryMapping(source string) error {
	for i := range b.categoryMappings {
		if b.categoryMappings[i].SourceCategory == source {
			b.categoryMappings = append(b.categoryMappings[:i], b.categoryMappings[i+1:]...)
			return nil
		}
	}
	return ErrCategoryNotFound
}

// Schema returns a copy of the current schema state.
func (b *Builder) Schema() Schema {
	s := Schema{
		Name:              b.name,
		Description:       b.description,
		CategoryFormat:    b.categoryFormat,
		CategorySeparator: b.categorySeparator,
	}
	s.Fields = append(s.Fields, b.fields...)
	s.CategoryMappings = append(s.CategoryMappings, b.categoryMappings...)
	return s
}

// slugify lowercases a header and collapses non-alphanumeric runs to single
// underscores.
func slugify(s string) string {
	var sb strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}
