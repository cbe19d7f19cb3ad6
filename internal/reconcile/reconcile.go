// Package reconcile matches externally finished books against the server
// catalog and marks the unfinished matches as finished.
package reconcile

import (
	"context"
	"fmt"

	"github.com/drallgood/abs-cli/internal/catalog"
	"github.com/drallgood/abs-cli/internal/logger"
	"github.com/drallgood/abs-cli/internal/models"
	"github.com/drallgood/abs-cli/internal/sources"
)

// Outcome classifies one reconciled record
type Outcome int

const (
	// NoMatch means the catalog id is not on the server
	NoMatch Outcome = iota
	// AlreadyFinished means the server item is finished already; nothing is written
	AlreadyFinished
	// WouldSync means the item would be marked finished outside dry-run
	WouldSync
	// Synced means the item was marked finished
	Synced
)

func (o Outcome) String() string {
	switch o {
	case NoMatch:
		return "no match"
	case AlreadyFinished:
		return "already finished"
	case WouldSync:
		return "would sync"
	case Synced:
		return "synced"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Writer issues the progress update for a matched item
type Writer interface {
	UpdateProgress(ctx context.Context, itemID string, update models.ProgressUpdate) error
}

// Result is the reconciliation of a single record
type Result struct {
	Record  sources.FinishedRecord
	Item    *catalog.Entry // nil for NoMatch
	Outcome Outcome
	// Suggestion is the closest server title for NoMatch rows when suggestions are enabled
	Suggestion string
}

// Tallies counts outcomes. Synced stays zero in dry-run; WouldSync counts the previewed writes.
type Tallies struct {
	Synced          int
	WouldSync       int
	AlreadyFinished int
	NotFound        int
}

// ToSync is the number of items synced or, in dry-run, that would be synced
func (t Tallies) ToSync() int {
	return t.Synced + t.WouldSync
}

// Report is the outcome of one reconciliation run
type Report struct {
	Results []Result
	Tallies Tallies
	Applied bool
}

// Engine reconciles finished records against a catalog index
type Engine struct {
	writer   Writer
	suggest  bool
	minScore int
}

// Option configures an Engine
type Option func(*Engine)

// WithSuggestions enables closest-title hints for records without a match
func WithSuggestions(enabled bool) Option {
	return func(e *Engine) {
		e.suggest = enabled
	}
}

// NewEngine creates an engine issuing writes through w
func NewEngine(w Writer, opts ...Option) *Engine {
	e := &Engine{writer: w, minScore: defaultMinScore}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reconcile classifies every record in input order against index. Records
// are independent: overlapping sources naming the same unfinished item each
// get their own idempotent write. Writes happen only when apply is set and the
// matched item is not finished in index. The first failed write aborts the run
// and returns the error together with the results so far.
func (e *Engine) Reconcile(ctx context.Context, records []sources.FinishedRecord, index catalog.Index, apply bool) (*Report, error) {
	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"component": "reconcile",
		"apply":     apply,
	})

	report := &Report{
		Results: make([]Result, 0, len(records)),
		Applied: apply,
	}

	var titles []string
	if e.suggest {
		titles = index.Titles()
	}

	for _, rec := range records {
		entry, ok := index.Lookup(rec.CatalogID)
		if !ok {
			res := Result{Record: rec, Outcome: NoMatch}
			if e.suggest {
				res.Suggestion = closestTitle(rec.Title, titles, e.minScore)
			}
			report.Results = append(report.Results, res)
			report.Tallies.NotFound++
			continue
		}

		item := entry
		res := Result{Record: rec, Item: &item}

		switch {
		case entry.IsFinished:
			res.Outcome = AlreadyFinished
			report.Tallies.AlreadyFinished++

		case !apply:
			res.Outcome = WouldSync
			report.Tallies.WouldSync++

		default:
			if err := e.writer.UpdateProgress(ctx, entry.ItemID, models.Finished()); err != nil {
				log.Debug("Failed to mark item finished", map[string]interface{}{
					"item_id":    entry.ItemID,
					"catalog_id": rec.CatalogID,
					"error":      err.Error(),
				})
				return report, fmt.Errorf("failed to mark %q (%s) as finished: %w", entry.Title, entry.ItemID, err)
			}
			res.Outcome = Synced
			report.Tallies.Synced++
			log.Debug("Marked item finished", map[string]interface{}{
				"item_id":    entry.ItemID,
				"catalog_id": rec.CatalogID,
			})
		}

		report.Results = append(report.Results, res)
	}

	return report, nil
}
