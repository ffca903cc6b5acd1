package mapping

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCustomFieldNotFound is returned when a custom field id is unknown.
var ErrCustomFieldNotFound = errors.New("custom field not found")

// UnknownTargetError is returned when a mapping targets a field that is
// not part of the catalog.
type UnknownTargetError struct {
	Target string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target field %q", e.Target)
}

// MissingRequiredFieldsError reports required target fields without a
// source mapping. Fields are listed in catalog order.
type MissingRequiredFieldsError struct {
	Fields []string
}

func (e *MissingRequiredFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
