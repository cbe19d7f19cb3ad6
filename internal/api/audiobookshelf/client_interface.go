package audiobookshelf

import (
	"context"

	"github.com/drallgood/abs-cli/internal/models"
)

// ClientInterface defines the Audiobookshelf operations used by the commands.
// This allows for mocking in tests
type ClientInterface interface {
	GetLibraries(ctx context.Context) ([]models.Library, error)
	GetLibraryItemsPage(ctx context.Context, libraryID string, limit, page int) (*models.ItemPage, error)
	GetAllLibraryItems(ctx context.Context, libraryID string) ([]models.LibraryItem, error)
	GetMediaProgress(ctx context.Context) ([]models.MediaProgress, error)
	UpdateProgress(ctx context.Context, itemID string, update models.ProgressUpdate) error
	GetItem(ctx context.Context, itemID string) (*models.ItemDetail, error)
	DeleteItem(ctx context.Context, itemID string, hard bool) error
	MatchItem(ctx context.Context, itemID, provider string) (*models.MatchResult, error)
	ScanLibrary(ctx context.Context, libraryID string, force bool) error
	GetLibraryStats(ctx context.Context, libraryID string) (*models.LibraryStats, error)
	Search(ctx context.Context, libraryID, q string) (*models.SearchResults, error)
	Close() error
}

// Ensure that the Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)
