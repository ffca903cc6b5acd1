// Package mapping implements the field mapping engine: proposing and
// validating correspondences between arbitrary source headers and the
// fixed target field catalog.
package mapping

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldType is the data type a target field expects after normalization.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeObject, TypeArray:
		return true
	}
	return false
}

// TargetField is one entry of the target catalog a feed is mapped onto.
type TargetField struct {
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	Required    bool      `json:"required" yaml:"required"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// DefaultCatalog returns the standard 10-field product feed catalog.
// Six fields are required: id, title, price, currency, category, link.
func DefaultCatalog() []TargetField {
	return []TargetField{
		{Name: "id", Type: TypeString, Required: true, Description: "Unique product identifier"},
		{Name: "title", Type: TypeString, Required: true, Description: "Product title/name"},
		{Name: "description", Type: TypeString, Required: false, Description: "Product description"},
		{Name: "price", Type: TypeNumber, Required: true, Description: "Numeric price value"},
		{Name: "currency", Type: TypeString, Required: true, Description: "Price currency code"},
		{Name: "category", Type: TypeString, Required: true, Description: "Product category"},
		{Name: "image", Type: TypeString, Required: false, Description: "Product image URL"},
		{Name: "link", Type: TypeString, Required: true, Description: "Affiliate link URL"},
		{Name: "brand", Type: TypeString, Required: false, Description: "Product brand name"},
		{Name: "availability", Type: TypeString, Required: false, Description: "In stock status"},
	}
}

// catalogFile is the YAML shape of an external catalog definition.
type catalogFile struct {
	Fields []TargetField `yaml:"fields"`
}

// LoadCatalog reads a target catalog from a YAML file. An empty type
// defaults to string. The file must define at least one field, names must
// be unique, and declared types must be valid.
func LoadCatalog(path string) ([]TargetField, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	if len(file.Fields) == 0 {
		return nil, fmt.Errorf("catalog file %s defines no fields", path)
	}

	seen := make(map[string]bool, len(file.Fields))
	for i := range file.Fields {
		f := &file.Fields[i]
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, fmt.Errorf("catalog field %d has an empty name", i)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("catalog field %q is defined twice", f.Name)
		}
		seen[f.Name] = true

		if f.Type == "" {
			f.Type = TypeString
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("catalog field %q has invalid type %q", f.Name, f.Type)
		}
	}

	return file.Fields, nil
}

// RequiredFields returns the names of required catalog entries in catalog
// order.
func RequiredFields(catalog []TargetField) []string {
	var names []string
	for _, f := range catalog {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}
