package schema

import "github.com/feedflow/feedflow/internal/mapping"

// Derived is the result of deriving an initial schema from a field
// mapping: the field list plus the source headers left unconsumed.
type Derived struct {
	Fields   []Field
	Unmapped []string
}

// Generate derives the initial schema fields from a field mapping. It is
/// a pure function of its inputs: calling it twice with identical
// arguments yields structurally equal results.
//
// Every catalog entry becomes a Field; sourceField is attached only when
// the mapped value is not the NotMapped sentinel AND is actually present
// in sourceFields (stale or free-string sources from the mapping layer
// are re-validated here and dropped). Custom mappings with a valid source
// are appended as optional string fields, skipping names that collide
// with an existing field. Unmapped lists the source headers consumed by
// neither set, in original order.
func Generate(mappings map[string]string, custom []mapping.CustomField, sourceFields []string, catalog []mapping.TargetField) Derived {
	present := make(map[string]bool, len(sourceFields))
	for _, sf := range sourceFields {
		present[sf] = true
	}

	used := make(map[string]bool)
	names := make(map[string]bool, len(catalog))

	fields := make([]Field, 0, len(catalog)+len(custom))
	for _, target := range catalog {
		field := Field{
			Name:        target.Name,
			Type:        target.Type,
			Required:    target.Required,
			Description: target.Description,
		}
		if source := mappings[target.Name]; source != mapping.NotMapped && present[source] {
			field.SourceField = source
			used[source] = true
		}
		fields = append(fields, field)
		names[target.Name] = true
	}

	for _, cf := range custom {
		if cf.SourceField == mapping.NotMapped || cf.SourceField == "" || !present[cf.SourceField] {
			continue
		}
		if cf.Name == "" || names[cf.Name] {
			continue
		}
		fields = append(fields, Field{
			Name:          cf.Name,
			Type:          mapping.TypeString,
			Required:      false,
			Description:   "Custom field mapped from " + cf.SourceField,
			SourceField:   cf.SourceField,
			IsCustomField: true,
		})
		names[cf.Name] = true
		used[cf.SourceField] = true
	}

	var unmapped []string
	for _, sf := range sourceFields {
		if !used[sf] {
			unmapped = append(unmapped, sf)
		}
	}

	return Derived{Fields: fields, Unmapped: unmapped}
}
