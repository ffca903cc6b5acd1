package schema

import (
	"errors"
	"fmt"
)

// ErrCategoryNotFound is returned when a category edit targets a source
// category absent from the mapping table.
var ErrCategoryNotFound = errors.New("category mapping not found")

// ErrFieldNotFound is returned when a field edit targets an unknown name.
var ErrFieldNotFound = errors.New("schema field not found")

// DuplicateNameError rejects a field whose name already exists in the
// schema.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate field name %q", e.Name)
}

// ProtectedFieldError rejects removal or demotion of a required standard
// field. The protection is enforced here, in the engine, so headless
// callers cannot violate it.
type ProtectedFieldError struct {
	Name string
}

func (e *ProtectedFieldError) Error() string {
	return fmt.Sprintf("protected field %q cannot be removed or made optional", e.Name)
}
