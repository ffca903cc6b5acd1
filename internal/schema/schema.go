// Package schema builds the typed, exportable schema artifact from a
// validated field mapping, including the category normalization table.
package schema

import "github.com/feedflow/feedflow/internal/mapping"

// Field is one schema entry: a target field plus its source provenance.
type Field struct {
	Name          string            `json:"name"`
	Type          mapping.FieldType `json:"type"`
	Required      bool              `json:"required"`
	Description   string            `json:"description,omitempty"`
	SourceField   string            `json:"sourceField,omitempty"`
	IsCustomField bool              `json:"isCustomField,omitempty"`
}

// core reports whether the field is protected: required standard fields
// cannot be removed or made optional.
func (f Field) core() bool {
	return f.Required && !f.IsCustomField
}

// CategoryFormat selects how hierarchical source categories are rendered.
type CategoryFormat string

const (
	FormatHierarchical CategoryFormat = "hierarchical"
	FormatFlat         CategoryFormat = "flat"
)

// DefaultCategorySeparator joins hierarchy segments in hierarchical output.
const DefaultCategorySeparator = " > "

// Valid reports whether the format is supported.
func (f CategoryFormat) Valid() bool {
	return f == FormatHierarchical || f == FormatFlat
}

// CategoryMapping converts one raw source category to its normalized
// target form. SourceCategory is unique within a mapping set.
type CategoryMapping struct {
	SourceCategory string `json:"sourceCategory"`
	TargetCategory string `json:"targetCategory"`
}

// Schema is the exportable schema value: a consistent snapshot of field
// and category state. Every builder mutation yields a new consistent
// Schema; partial application never happens.
type Schema struct {
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Fields            []Field           `json:"fields"`
	CategoryFormat    CategoryFormat    `json:"categoryFormat"`
	CategorySeparator string            `json:"categorySeparator"`
	CategoryMappings  []CategoryMapping `json:"categoryMappings"`
}
