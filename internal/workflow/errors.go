// Package workflow drives a feed normalization session from upload through
// mapping, schema design and export, snapshotting each stage to history.
//
// # Error Codes Reference
//
// Technical errors are mapped to user-facing messages with stable codes so
// users can quote a code to support staff:
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE002 - Empty dataset           Patterns: "empty dataset", "no data rows"
//	FILE003 - No dataset uploaded     Patterns: "no dataset"
//	MAP001  - Missing required fields Patterns: "missing required fields"
//	MAP002  - Unknown target field    Patterns: "unknown target field"
//	MAP003  - Custom field not found  Patterns: "custom field not found"
//	MAP004  - Mappings not validated  Patterns: "not been validated"
//	SCH001  - Schema not generated    Patterns: "schema has not been generated"
//	SCH002  - Protected field         Patterns: "protected field"
//	SCH003  - Duplicate field name    Patterns: "duplicate field name"
//	SCH004  - Field not found         Patterns: "schema field not found"
//	SCH005  - Category not found      Patterns: "category mapping not found"
//	SCH006  - Schema not finalized    Patterns: "not been finalized"
//	EXP001  - Unsupported export type Patterns: "unsupported export type"
//	SES001  - Session not found       Patterns: "session not found"
//	HIST001 - Snapshot not found      Patterns: "history record not found"
//	DB001   - Database unavailable    Patterns: "connection refused", "connection reset"
//	REQ001  - Request cancelled       Patterns: "context canceled"
//	REQ003  - Bad request body        Patterns: "invalid request body", "no file provided"
//	REQ002  - Request timed out       Patterns: "context deadline exceeded", "timeout"
//	RATE001 - Rate limited            Patterns: "rate limit"
//	ERR000  - Fallback when nothing matches
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.
package workflow

import (
	"errors"
	"strings"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoDataset is returned when a stage needs an upload that has not
	// happened yet.
	ErrNoDataset = errors.New("no dataset uploaded")

	// ErrEmptyDataset is returned when an upload parsed to zero headers
	// and zero rows.
	ErrEmptyDataset = errors.New("empty dataset: file contains no data rows")

	// ErrNotValidated gates schema generation on a passed validation.
	ErrNotValidated = errors.New("field mappings have not been validated")

	// ErrSchemaNotGenerated is returned when schema edits or export run
	// before GenerateSchema.
	ErrSchemaNotGenerated = errors.New("schema has not been generated")

	// ErrNotFinalized is returned when export runs before Finalize.
	ErrNotFinalized = errors.New("schema has not been finalized")
)

// UserMessage is the user-facing rendering of a technical error.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the feed into smaller files and upload again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty dataset",
		msg: UserMessage{
			Message: "The uploaded file contains no data rows",
			Action:  "Check that the file has a header line and at least the expected structure",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no data rows",
		msg: UserMessage{
			Message: "The uploaded file contains no data rows",
			Action:  "Check that the file has a header line and at least the expected structure",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no dataset",
		msg: UserMessage{
			Message: "No feed file has been uploaded yet",
			Action:  "Upload a CSV, JSON or XML feed before this step",
			Code:    "FILE003",
		},
	},
	{
		pattern: "missing required fields",
		msg: UserMessage{
			Message: "Some required target fields are still unmapped",
			Action:  "Map every required field or review the listed fields",
			Code:    "MAP001",
		},
	},
	{
		pattern: "unknown target field",
		msg: UserMessage{
			Message: "The mapping refers to a target field that is not in the catalog",
			Action:  "Use one of the catalog field names",
			Code:    "MAP002",
		},
	},
	{
		pattern: "custom field not found",
		msg: UserMessage{
			Message: "The custom field no longer exists",
			Action:  "Refresh the mapping view and try again",
			Code:    "MAP003",
		},
	},
	{
		pattern: "not been validated",
		msg: UserMessage{
			Message: "Field mappings must be validated before generating a schema",
			Action:  "Run mapping validation first",
			Code:    "MAP004",
		},
	},
	{
		pattern: "schema has not been generated",
		msg: UserMessage{
			Message: "No schema exists for this session yet",
			Action:  "Generate the schema from the validated mappings first",
			Code:    "SCH001",
		},
	},
	{
		pattern: "protected field",
		msg: UserMessage{
			Message: "Required standard fields cannot be removed or made optional",
			Action:  "Leave the core catalog fields in place",
			Code:    "SCH002",
		},
	},
	{
		pattern: "duplicate field name",
		msg: UserMessage{
			Message: "A schema field with this name already exists",
			Action:  "Pick a different field name",
			Code:    "SCH003",
		},
	},
	{
		pattern: "schema field not found",
		msg: UserMessage{
			Message: "The schema field no longer exists",
			Action:  "Refresh the schema view and try again",
			Code:    "SCH004",
		},
	},
	{
		pattern: "category mapping not found",
		msg: UserMessage{
			Message: "The category mapping no longer exists",
			Action:  "Regenerate the category table and try again",
			Code:    "SCH005",
		},
	},
	{
		pattern: "not been finalized",
		msg: UserMessage{
			Message: "The schema must be finalized before exporting",
			Action:  "Finalize the schema first",
			Code:    "SCH006",
		},
	},
	{
		pattern: "unsupported export type",
		msg: UserMessage{
			Message: "The requested export format is not supported",
			Action:  "Choose csv or json",
			Code:    "EXP001",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "The session does not exist or has expired",
			Action:  "Start a new session",
			Code:    "SES001",
		},
	},
	{
		pattern: "history record not found",
		msg: UserMessage{
			Message: "The saved snapshot could not be found",
			Action:  "Refresh the history list and pick an existing entry",
			Code:    "HIST001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The history store is unavailable",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The history store connection was interrupted",
			Action:  "Please try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body could not be parsed",
			Action:  "Check the request payload against the API documentation",
			Code:    "REQ003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was attached to the upload",
			Action:  "Attach a feed file in the file form field",
			Code:    "REQ003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to its user-facing message. The
// first matching pattern wins; unmatched errors fall back to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}
