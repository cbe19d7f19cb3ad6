// Package audible reads finished books from an audible-cli library export.
package audible

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/drallgood/abs-cli/internal/logger"
	"github.com/drallgood/abs-cli/internal/sources"
)

// Format is an export file format
type Format string

const (
	FormatJSON Format = "json"
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
)

// truthy lists the accepted is_finished values of delimited exports, lower case
var truthy = map[string]bool{
	"true": true,
	"1":    true,
	"yes":  true,
}

// FormatFor picks the export format from the file extension
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".tsv":
		return FormatTSV, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", &sources.FormatError{
			Path: path,
			Msg:  fmt.Sprintf("unsupported file extension %q (expected .json, .tsv or .csv)", ext),
		}
	}
}

// ReadFile returns every finished book of the export at path
func ReadFile(ctx context.Context, path string) ([]sources.FinishedRecord, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audible export: %w", err)
	}

	records, err := Parse(data, format)
	if err != nil {
		var fe *sources.FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}

	logger.FromContext(ctx).Debug("Read audible export", map[string]interface{}{
		"path":   path,
		"format": string(format),
		"count":  len(records),
	})
	return records, nil
}

// Parse decodes an export in the given format
func Parse(data []byte, format Format) ([]sources.FinishedRecord, error) {
	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatTSV:
		return parseDelimited(bytes.NewReader(data), '\t')
	case FormatCSV:
		return parseDelimited(bytes.NewReader(data), ',')
	default:
		return nil, &sources.FormatError{Msg: fmt.Sprintf("unsupported format %q", format)}
	}
}

// parseJSON keeps entries whose is_finished is the JSON literal true
func parseJSON(data []byte) ([]sources.FinishedRecord, error) {
	var entries []map[string]interface{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &sources.FormatError{Msg: fmt.Sprintf("expected a JSON array of objects: %v", err)}
	}

	var records []sources.FinishedRecord
	for _, entry := range entries {
		if finished, ok := entry["is_finished"].(bool); !ok || !finished {
			continue
		}
		asin, _ := entry["asin"].(string)
		asin = strings.TrimSpace(asin)
		if asin == "" {
			continue
		}
		title, _ := entry["title"].(string)
		records = append(records, sources.FinishedRecord{
			CatalogID: asin,
			Title:     title,
			Source:    sources.SourceAudible,
		})
	}
	return records, nil
}

// parseDelimited reads a header row followed by data rows. Missing columns
// read as empty strings; only the asin column is required in the header.
func parseDelimited(r io.Reader, delim rune) ([]sources.FinishedRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = delim == '\t'

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &sources.FormatError{Msg: "missing header row"}
	}
	if err != nil {
		return nil, &sources.FormatError{Msg: fmt.Sprintf("invalid header row: %v", err)}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns["asin"]; !ok {
		return nil, &sources.FormatError{Msg: "missing required column \"asin\""}
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []sources.FinishedRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &sources.FormatError{Msg: err.Error()}
		}

		if !truthy[strings.ToLower(strings.TrimSpace(field(row, "is_finished")))] {
			continue
		}
		asin := strings.TrimSpace(field(row, "asin"))
		if asin == "" {
			continue
		}
		records = append(records, sources.FinishedRecord{
			CatalogID: asin,
			Title:     field(row, "title"),
			Source:    sources.SourceAudible,
		})
	}
	return records, nil
}
