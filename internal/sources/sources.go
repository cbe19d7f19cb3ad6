// Package sources defines the record type shared by every external source of
// "finished" listening state.
package sources

import "fmt"

// Source labels used in reports
const (
	SourceLibation  = "Libation"
	SourceAudible   = "Audible"
	SourceHardcover = "Hardcover"
)

// FinishedRecord is one externally reported completed book
type FinishedRecord struct {
	// CatalogID is the ASIN matched against the server items
	CatalogID string
	Title     string
	Source    string
}

// FormatError reports a malformed or unsupported source file
type FormatError struct {
	Path string
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// Count returns the number of distinct source labels in records
func Count(records []FinishedRecord) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.Source] = struct{}{}
	}
	return len(seen)
}
