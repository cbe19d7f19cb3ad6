package testutils

import (
	"context"

	"github.com/drallgood/abs-cli/internal/api/audiobookshelf"
	"github.com/drallgood/abs-cli/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockABSClient is a mock implementation of audiobookshelf.ClientInterface
type MockABSClient struct {
	mock.Mock

	// Closes counts Close calls
	Closes int
}

var _ audiobookshelf.ClientInterface = (*MockABSClient)(nil)

// GetLibraries mocks the GetLibraries method
func (m *MockABSClient) GetLibraries(ctx context.Context) ([]models.Library, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Library), args.Error(1)
}

// GetLibraryItemsPage mocks the GetLibraryItemsPage method
func (m *MockABSClient) GetLibraryItemsPage(ctx context.Context, libraryID string, limit, page int) (*models.ItemPage, error) {
	args := m.Called(ctx, libraryID, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemPage), args.Error(1)
}

// GetAllLibraryItems mocks the GetAllLibraryItems method
func (m *MockABSClient) GetAllLibraryItems(ctx context.Context, libraryID string) ([]models.LibraryItem, error) {
	args := m.Called(ctx, libraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LibraryItem), args.Error(1)
}

// GetMediaProgress mocks the GetMediaProgress method
func (m *MockABSClient) GetMediaProgress(ctx context.Context) ([]models.MediaProgress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MediaProgress), args.Error(1)
}

// UpdateProgress mocks the UpdateProgress method
func (m *MockABSClient) UpdateProgress(ctx context.Context, itemID string, update models.ProgressUpdate) error {
	args := m.Called(ctx, itemID, update)
	return args.Error(0)
}

// GetItem mocks the GetItem method
func (m *MockABSClient) GetItem(ctx context.Context, itemID string) (*models.ItemDetail, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemDetail), args.Error(1)
}

// DeleteItem mocks the DeleteItem method
func (m *MockABSClient) DeleteItem(ctx context.Context, itemID string, hard bool) error {
	args := m.Called(ctx, itemID, hard)
	return args.Error(0)
}

// MatchItem mocks the MatchItem method
func (m *MockABSClient) MatchItem(ctx context.Context, itemID, provider string) (*models.MatchResult, error) {
	args := m.Called(ctx, itemID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchResult), args.Error(1)
}

// ScanLibrary mocks the ScanLibrary method
func (m *MockABSClient) ScanLibrary(ctx context.Context, libraryID string, force bool) error {
	args := m.Called(ctx, libraryID, force)
	return args.Error(0)
}

// GetLibraryStats mocks the GetLibraryStats method
func (m *MockABSClient) GetLibraryStats(ctx context.Context, libraryID string) (*models.LibraryStats, error) {
	args := m.Called(ctx, libraryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LibraryStats), args.Error(1)
}

// Search mocks the Search method
func (m *MockABSClient) Search(ctx context.Context, libraryID, q string) (*models.SearchResults, error) {
	args := m.Called(ctx, libraryID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchResults), args.Error(1)
}

// Close records the release of the client
func (m *MockABSClient) Close() error {
	m.Closes++
	return nil
}
