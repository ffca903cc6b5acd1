package workflow

import (
	"errors"
	"testing"

	"github.com/feedflow/feedflow/internal/feed"
	"github.com/feedflow/feedflow/internal/history"
	"github.com/feedflow/feedflow/internal/mapping"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "file too large",
			err:      &feed.FileTooLargeError{Size: 10 << 20, Limit: 5 << 20},
			wantCode: "FILE001",
		},
		{
			name:     "empty dataset",
			err:      ErrEmptyDataset,
			wantCode: "FILE002",
		},
		{
			name:     "no dataset",
			err:      ErrNoDataset,
			wantCode: "FILE003",
		},
		{
			name:     "missing required fields",
			err:      &mapping.MissingRequiredFieldsError{Fields: []string{"id", "price"}},
			wantCode: "MAP001",
		},
		{
			name:     "unknown target field",
			err:      &mapping.UnknownTargetError{Target: "nope"},
			wantCode: "MAP002",
		},
		{
			name:     "custom field not found",
			err:      mapping.ErrCustomFieldNotFound,
			wantCode: "MAP003",
		},
		{
			name:     "not validated",
			err:      ErrNotValidated,
			wantCode: "MAP004",
		},
		{
			name:     "schema not generated",
			err:      ErrSchemaNotGenerated,
			wantCode: "SCH001",
		},
		{
			name:     "not finalized",
			err:      ErrNotFinalized,
			wantCode: "SCH006",
		},
		{
			name:     "unsupported export type",
			err:      errors.New(`unsupported export type "yaml"`),
			wantCode: "EXP001",
		},
		{
			name:     "session not found",
			err:      ErrSessionNotFound,
			wantCode: "SES001",
		},
		{
			name:     "history record not found",
			err:      history.ErrNotFound,
			wantCode: "HIST001",
		},
		{
			name:     "unknown error falls back",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("SESSION NOT FOUND"),
			wantCode: "SES001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}
