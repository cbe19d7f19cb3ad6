// Package libation reads finished books from a Libation SQLite database.
package libation

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/drallgood/abs-cli/internal/logger"
	"github.com/drallgood/abs-cli/internal/sources"

	// Pure Go SQLite driver (no CGO required)
	_ "modernc.org/sqlite"
)

// finishedQuery joins books with the user's item state and keeps finished ones
const finishedQuery = `SELECT b.AudibleProductId, b.Title
FROM Books b
JOIN UserDefinedItem udi ON b.AudibleProductId = udi.BookId
WHERE udi.IsFinished = 1`

// DialectorFunc returns the gorm dialector used to open the database at path
type DialectorFunc func(path string) gorm.Dialector

// Reader reads finished books from a Libation database
type Reader struct {
	dialector DialectorFunc
}

// Option configures a Reader
type Option func(*Reader)

// WithDialector replaces how the database is opened
func WithDialector(fn DialectorFunc) Option {
	return func(r *Reader) {
		r.dialector = fn
	}
}

// NewReader creates a Reader opening databases read-only with the pure Go driver
func NewReader(opts ...Option) *Reader {
	r := &Reader{dialector: readOnlyDialector}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns every finished book of the database at path. Rows without an
// ASIN are skipped. The file is opened read-only and the connection is closed
// before Read returns.
func (r *Reader) Read(ctx context.Context, path string) (records []sources.FinishedRecord, err error) {
	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"component": "libation_reader",
		"path":      path,
	})

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("libation database: %w", err)
	}

	db, err := gorm.Open(r.dialector(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	// gorm.Open can fail after the pool was opened, e.g. when the ping fails
	defer func() {
		if cerr := closeDB(db); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close libation database: %w", cerr)
			records = nil
		}
	}()
	if err != nil {
		return nil, fmt.Errorf("failed to open libation database: %w", err)
	}

	rows, err := db.WithContext(ctx).Raw(finishedQuery).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query libation database: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var asin, title sql.NullString
		if err := rows.Scan(&asin, &title); err != nil {
			return nil, fmt.Errorf("failed to read libation row: %w", err)
		}
		id := strings.TrimSpace(asin.String)
		if id == "" {
			continue
		}
		records = append(records, sources.FinishedRecord{
			CatalogID: id,
			Title:     title.String,
			Source:    sources.SourceLibation,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read libation rows: %w", err)
	}

	log.Debug("Read finished books", map[string]interface{}{"count": len(records)})
	return records, nil
}

// closeDB releases the connection pool behind db, if any
func closeDB(db *gorm.DB) error {
	if db == nil || db.Config == nil || db.ConnPool == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		if c, ok := db.ConnPool.(io.Closer); ok {
			return c.Close()
		}
		return err
	}
	return sqlDB.Close()
}

// readOnlyDialector opens path through a SQLite URI in read-only mode
func readOnlyDialector(path string) gorm.Dialector {
	return sqlite.Dialector{
		DriverName: "sqlite", // This will use modernc.org/sqlite
		DSN:        readOnlyDSN(path),
	}
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func readOnlyDSN(path string) string {
	return "file:" + uriEscaper.Replace(path) + "?mode=ro"
}
