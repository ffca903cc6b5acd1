package feed

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize bounds uploads before parsing begins (5 MB). The
// parsers themselves impose no internal backpressure.
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// FileTooLargeError is returned by ParseFile when content exceeds the
// configured size limit.
type FileTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %d bytes exceeds %d byte limit", e.Size, e.Limit)
}

// DetectFileType maps a file name to a feed format by extension.
func DetectFileType(fileName string) FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	switch ext {
	case "csv":
		return FileTypeCSV
	case "json":
		return FileTypeJSON
	case "xml":
		return FileTypeXML
	default:
		return FileTypeOther
	}
}

// ParseFile dispatches content to the format parser selected by the file
// extension. Unrecognized extensions fall back to content sniffing: a
// leading '{' or '[' means JSON, a leading '<' means XML, anything else is
// parsed as CSV. The returned dataset carries the extension-derived file
// type and file provenance.
//
// maxSize <= 0 applies DefaultMaxFileSize. Oversize content fails before
// any parsing with *FileTooLargeError; malformed content never errors and
// surfaces as an empty table instead.
func ParseFile(fileName string, content []byte, maxSize int64) (*Dataset, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if int64(len(content)) > maxSize {
		return nil, &FileTooLargeError{Size: int64(len(content)), Limit: maxSize}
	}

	text := string(content)
	fileType := DetectFileType(fileName)

	var table Table
	switch fileType {
	case FileTypeCSV:
		table = ParseCSV(text)
	case FileTypeJSON:
		table = ParseJSON(text)
	case FileTypeXML:
		table = ParseXML(text)
	default:
		switch {
		case strings.HasPrefix(strings.TrimSpace(text), "{"),
			strings.HasPrefix(strings.TrimSpace(text), "["):
			table = ParseJSON(text)
		case strings.HasPrefix(strings.TrimSpace(text), "<"):
			table = ParseXML(text)
		default:
			table = ParseCSV(text)
		}
	}

	return &Dataset{
		Table:    table,
		FileType: fileType,
		FileName: fileName,
		FileSize: int64(len(content)),
	}, nil
}
