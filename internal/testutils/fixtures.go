package testutils

import (
	"fmt"

	"github.com/drallgood/abs-cli/internal/models"
)

// Book returns a library item with the given id, title and ASIN
func Book(id, title, asin string) models.LibraryItem {
	return models.LibraryItem{
		ID:        id,
		LibraryID: "lib1",
		Title:     title,
		Author:    "Test Author",
		Duration:  3600,
		ASIN:      asin,
	}
}

// Books returns n items with ids item-0..item-n-1 and ASINs B000000000..
func Books(n int) []models.LibraryItem {
	items := make([]models.LibraryItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, Book(
			fmt.Sprintf("item-%d", i),
			fmt.Sprintf("Book %d", i),
			fmt.Sprintf("B%09d", i),
		))
	}
	return items
}

// Page wraps items into an ItemPage
func Page(items []models.LibraryItem, total, limit, page int) *models.ItemPage {
	return &models.ItemPage{Items: items, Total: total, Limit: limit, Page: page}
}
