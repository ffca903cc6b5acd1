package mapping

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NotMapped is the sentinel source value meaning "no correspondence
// chosen" for a target field.
const NotMapped = "not_mapped"

// CustomField is a user-defined correspondence outside the standard
// catalog.
type CustomField struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SourceField string `json:"sourceField"`
}

// CustomFieldPatch carries partial updates for a custom field. Nil fields
// are left unchanged.
type CustomFieldPatch struct {
	Name        *string `json:"name,omitempty"`
	SourceField *string `json:"sourceField,omitempty"`
}

// Engine tracks the mapping state for one upload: target-to-source
// assignments plus user-defined custom fields. It is not safe for
// concurrent use; the workflow session serializes access.
type Engine struct {
	catalog  []TargetField
	headers  []string
	mappings map[string]string
	custom   []CustomField
	nextID   int
}

// NewEngine creates an engine for the given catalog and source headers.
// All targets start at NotMapped; call AutoMap for the substring
// heuristic.
func NewEngine(catalog []TargetField, headers []string) *Engine {
	mappings := make(map[string]string, len(catalog))
	for _, f := range catalog {
		mappings[f.Name] = NotMapped
	}
	return &Engine{
		catalog:  catalog,
		headers:  append([]string(nil), headers...),
		mappings: mappings,
		nextID:   1,
	}
}

// Catalog returns the target catalog the engine maps onto.
func (e *Engine) Catalog() []TargetField {
	return e.catalog
}

// Headers returns the source headers in original order.
func (e *Engine) Headers() []string {
	return append([]string(nil), e.headers...)
}

// AutoMap assigns each target field the first source header whose
// lowercase form is a substring of the target name or vice versa. This is
// a deterministic substring heuristic, not similarity scoring: ties
// resolve to the first header in source order. Targets that find a match
// are overwritten unconditionally; targets without a match keep their
// prior value.
func (e *Engine) AutoMap() {
	for _, target := range e.catalog {
		targetName := strings.ToLower(target.Name)
		for _, header := range e.headers {
			h := strings.ToLower(header)
			if strings.Contains(h, targetName) || strings.Contains(targetName, h) {
				e.mappings[target.Name] = header
				break
			}
		}
	}
}

// Set assigns a source to a target field. The source is treated as a free
// string (NotMapped or any value); membership in the header set is
// re-validated at schema derivation, so stale sources never reach a
// schema's sourceField.
func (e *Engine) Set(target, source string) error {
	if _, ok := e.mappings[target]; !ok {
		return &UnknownTargetError{Target: target}
	}
	e.mappings[target] = source
	return nil
}

// Mappings returns a copy of the target-to-source assignments.
func (e *Engine) Mappings() map[string]string {
	out := make(map[string]string, len(e.mappings))
	for k, v := range e.mappings {
		out[k] = v
	}
	return out
}

// Unmapped returns the source headers not consumed by any standard or
// custom mapping, in original header order. Recomputed on demand so it is
// always consistent with the current state.
func (e *Engine) Unmapped() []string {
	used := make(map[string]bool)
	for _, source := range e.mappings {
		if source != NotMapped {
			used[source] = true
		}
	}
	for _, cf := range e.custom {
		if cf.SourceField != NotMapped {
			used[cf.SourceField] = true
		}
	}

	var unmapped []string
	for _, header := range e.headers {
		if !used[header] {
			unmapped = append(unmapped, header)
		}
	}
	return unmapped
}

// AddCustomField appends a new custom field with a session-monotonic id
// and a placeholder name.
func (e *Engine) AddCustomField() CustomField {
	cf := CustomField{
		ID:          fmt.Sprintf("custom-%d", e.nextID),
		Name:        fmt.Sprintf("custom_field_%d", e.nextID),
		SourceField: NotMapped,
	}
	e.nextID++
	e.custom = append(e.custom, cf)
	return cf
}

// UpdateCustomField merges a patch into the custom field with the given
// id. Name uniqueness is not enforced here; schema derivation skips
// colliding names.
func (e *Engine) UpdateCustomField(id string, patch CustomFieldPatch) (CustomField, error) {
	for i := range e.custom {
		if e.custom[i].ID != id {
			continue
		}
		if patch.Name != nil {
			e.custom[i].Name = *patch.Name
		}
		if patch.SourceField != nil {
			e.custom[i].SourceField = *patch.SourceField
		}
		return e.custom[i], nil
	}
	return CustomField{}, ErrCustomFieldNotFound
}

// RemoveCustomField deletes the custom field with the given id.
func (e *Engine) RemoveCustomField(id string) error {
	for i := range e.custom {
		if e.custom[i].ID == id {
			e.custom = append(e.custom[:i], e.custom[i+1:]...)
			return nil
		}
	}
	return ErrCustomFieldNotFound
}

// CustomFields returns a copy of the custom field list in creation order.
func (e *Engine) CustomFields() []CustomField {
	return append([]CustomField(nil), e.custom...)
}

// ValidateRequired is the sole hard gate before schema derivation: every
// required catalog field must be mapped to something other than NotMapped.
func (e *Engine) ValidateRequired() error {
	var missing []string
	for _, f := range e.catalog {
		if !f.Required {
			continue
		}
		if source, ok := e.mappings[f.Name]; !ok || source == "" || source == NotMapped {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &MissingRequiredFieldsError{Fields: missing}
	}
	return nil
}

// Restore replaces the engine state with a previously snapshotted mapping.
// The custom id counter resumes after the highest restored custom-N id.
func (e *Engine) Restore(mappings map[string]string, custom []CustomField) {
	for _, f := range e.catalog {
		if source, ok := mappings[f.Name]; ok && source != "" {
			e.mappings[f.Name] = source
		} else {
			e.mappings[f.Name] = NotMapped
		}
	}

	e.custom = append([]CustomField(nil), custom...)
	e.nextID = 1
	for _, cf := range custom {
		if n := trailingNumber(cf.ID); n >= e.nextID {
			e.nextID = n + 1
		}
	}
}

var trailingDigits = regexp.MustCompile(`\d+$`)

func trailingNumber(s string) int {
	match := trailingDigits.FindString(s)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}
