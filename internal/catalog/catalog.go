// Package catalog builds in-memory indices over every library of an
// Audiobookshelf server.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/drallgood/abs-cli/internal/logger"
	"github.com/drallgood/abs-cli/internal/models"
)

// PageSize is the number of items requested per page while walking a library
const PageSize = 100

// Lister is the subset of the Audiobookshelf client needed to enumerate items
type Lister interface {
	GetLibraries(ctx context.Context) ([]models.Library, error)
	GetLibraryItemsPage(ctx context.Context, libraryID string, limit, page int) (*models.ItemPage, error)
}

// ProgressLister fetches the current user's media progress
type ProgressLister interface {
	GetMediaProgress(ctx context.Context) ([]models.MediaProgress, error)
}

// Source is everything BuildIndex needs from the server
type Source interface {
	Lister
	ProgressLister
}

// Entry is one server item as seen by the reconciliation engine
type Entry struct {
	ItemID     string
	Title      string
	IsFinished bool
}

// Index maps a catalog id (ASIN) to the server item carrying it
type Index map[string]Entry

// Lookup returns the entry for catalogID
func (idx Index) Lookup(catalogID string) (Entry, bool) {
	e, ok := idx[catalogID]
	return e, ok
}

// Titles returns every non-empty indexed server title in sorted order, used for fuzzy suggestions
func (idx Index) Titles() []string {
	titles := make([]string, 0, len(idx))
	for _, e := range idx {
		if e.Title == "" {
			continue
		}
		titles = append(titles, e.Title)
	}
	sort.Strings(titles)
	return titles
}

// BuildIndex walks every library and indexes items by ASIN. The finished flag
// comes from the user's media progress joined on the item id. Items without an
// ASIN are skipped; on duplicate ASINs the item seen last wins.
// Any request failure aborts the build.
func BuildIndex(ctx context.Context, src Source) (Index, error) {
	log := logger.FromContext(ctx)

	progress, err := src.GetMediaProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media progress: %w", err)
	}
	finished := make(map[string]bool, len(progress))
	for _, p := range progress {
		finished[p.LibraryItemID] = p.IsFinished
	}

	index := make(Index)
	skipped := 0
	err = Walk(ctx, src, func(item models.LibraryItem) {
		if item.ASIN == "" {
			skipped++
			return
		}
		if prev, ok := index[item.ASIN]; ok && prev.ItemID != item.ID {
			log.Debug("Duplicate ASIN, keeping the later item", map[string]interface{}{
				"asin":     item.ASIN,
				"previous": prev.ItemID,
				"item":     item.ID,
			})
		}
		index[item.ASIN] = Entry{
			ItemID:     item.ID,
			Title:      item.Title,
			IsFinished: finished[item.ID],
		}
	})
	if err != nil {
		return nil, err
	}

	log.Debug("Built catalog index", map[string]interface{}{
		"indexed":      len(index),
		"without_asin": skipped,
	})
	return index, nil
}

// BuildTitleIndex maps every item id across all libraries to its title
func BuildTitleIndex(ctx context.Context, src Lister) (map[string]string, error) {
	titles := make(map[string]string)
	err := Walk(ctx, src, func(item models.LibraryItem) {
		titles[item.ID] = item.Title
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// Walk calls fn for every item of every library, paging with PageSize.
// Paging stops at the first empty page or once (page+1)*PageSize reaches the reported total.
func Walk(ctx context.Context, src Lister, fn func(models.LibraryItem)) error {
	libraries, err := src.GetLibraries(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch libraries: %w", err)
	}

	for _, lib := range libraries {
		for page := 0; ; page++ {
			result, err := src.GetLibraryItemsPage(ctx, lib.ID, PageSize, page)
			if err != nil {
				return fmt.Errorf("failed to fetch page %d of library %s: %w", page, lib.Name, err)
			}
			if len(result.Items) == 0 {
				break
			}
			for _, item := range result.Items {
				fn(item)
			}
			if (page+1)*PageSize >= result.Total {
				break
			}
		}
	}
	return nil
}
