package audible

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drallgood/abs-cli/internal/sources"
)

func writeExport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadFileJSON(t *testing.T) {
	path := writeExport(t, "library.json",
		`[{"asin":"A1","title":"T","is_finished":true},{"asin":"A2","title":"U","is_finished":false}]`)

	records, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []sources.FinishedRecord{
		{CatalogID: "A1", Title: "T", Source: sources.SourceAudible},
	}, records)
}

func TestParseJSONStrictTrue(t *testing.T) {
	data := []byte(`[
		{"asin":"A1","title":"bool true","is_finished":true},
		{"asin":"A2","title":"string true","is_finished":"true"},
		{"asin":"A3","title":"number one","is_finished":1},
		{"asin":"A4","title":"missing flag"},
		{"asin":"A5","title":"null flag","is_finished":null},
		{"title":"no asin","is_finished":true},
		{"asin":"  ","title":"blank asin","is_finished":true},
		{"asin":"A6","is_finished":true}
	]`)

	records, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []sources.FinishedRecord{
		{CatalogID: "A1", Title: "bool true", Source: sources.SourceAudible},
		{CatalogID: "A6", Title: "", Source: sources.SourceAudible},
	}, records)
}

func TestParseJSONMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{not json`},
		{"object instead of array", `{"asin":"A1","is_finished":true}`},
		{"array of scalars", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatJSON)
			var fe *sources.FormatError
			assert.True(t, errors.As(err, &fe))
		})
	}
}

func TestReadFileCSV(t *testing.T) {
	path := writeExport(t, "library.csv", "asin,title,is_finished\nA9,Some Title,Yes\n")

	records, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []sources.FinishedRecord{
		{CatalogID: "A9", Title: "Some Title", Source: sources.SourceAudible},
	}, records)
}

func TestParseDelimitedTruthyTokens(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		accept bool
	}{
		{"true", "true", true},
		{"TRUE", "TRUE", true},
		{"one", "1", true},
		{"yes", "yes", true},
		{"Yes padded", "  Yes ", true},
		{"false", "false", false},
		{"zero", "0", false},
		{"no", "no", false},
		{"y", "y", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "asin,title,is_finished\nA1,Title,\"" + tt.value + "\"\n"
			records, err := Parse([]byte(data), FormatCSV)
			require.NoError(t, err)
			if tt.accept {
				assert.Len(t, records, 1)
			} else {
				assert.Empty(t, records)
			}
		})
	}
}

func TestParseTSV(t *testing.T) {
	data := "asin\ttitle\tauthors\tis_finished\n" +
		"B01\tThe \"Quoted\" Book\tSomeone\ttrue\n" +
		"B02\tUnfinished\tSomeone\tfalse\n" +
		"B03\tWith, Comma\tSomeone\t1\n"

	records, err := Parse([]byte(data), FormatTSV)
	require.NoError(t, err)
	assert.Equal(t, []sources.FinishedRecord{
		{CatalogID: "B01", Title: `The "Quoted" Book`, Source: sources.SourceAudible},
		{CatalogID: "B03", Title: "With, Comma", Source: sources.SourceAudible},
	}, records)
}

func TestParseDelimitedLenientColumns(t *testing.T) {
	t.Run("missing title column", func(t *testing.T) {
		records, err := Parse([]byte("asin,is_finished\nA1,true\n"), FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, []sources.FinishedRecord{{CatalogID: "A1", Source: sources.SourceAudible}}, records)
	})

	t.Run("missing is_finished column yields nothing", func(t *testing.T) {
		records, err := Parse([]byte("asin,title\nA1,T\n"), FormatCSV)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("short rows", func(t *testing.T) {
		records, err := Parse([]byte("asin,title,is_finished\nA1\nA2,T2,yes\n"), FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, []sources.FinishedRecord{{CatalogID: "A2", Title: "T2", Source: sources.SourceAudible}}, records)
	})

	t.Run("byte order mark", func(t *testing.T) {
		records, err := Parse([]byte("\ufeffasin,title,is_finished\nA1,T,yes\n"), FormatCSV)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("empty asin skipped", func(t *testing.T) {
		records, err := Parse([]byte("asin,title,is_finished\n,T,yes\n"), FormatCSV)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestParseDelimitedErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty file", ""},
		{"no asin column", "title,is_finished\nT,yes\n"},
		{"broken quoting", "asin,title,is_finished\nA1,\"unterminated,yes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatCSV)
			var fe *sources.FormatError
			assert.True(t, errors.As(err, &fe), "got %v", err)
		})
	}
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	path := writeExport(t, "library.xml", "<library/>")

	_, err := ReadFile(context.Background(), path)
	var fe *sources.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, path, fe.Path)
	assert.Contains(t, fe.Msg, ".xml")
}

func TestReadFileSetsPathOnFormatError(t *testing.T) {
	path := writeExport(t, "library.JSON", `{"oops":true}`)

	_, err := ReadFile(context.Background(), path)
	var fe *sources.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, path, fe.Path)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadFileIsPure(t *testing.T) {
	path := writeExport(t, "library.csv", "asin,title,is_finished\nA1,One,yes\nA2,Two,no\nA3,Three,1\n")

	first, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	second, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
