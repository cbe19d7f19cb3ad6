package audiobookshelf

import (
	"fmt"
	"strings"
	"time"

	"github.com/drallgood/abs-cli/internal/models"
)

func mapLibrary(dto libraryDTO) (models.Library, error) {
	if dto.ID == "" {
		return models.Library{}, fmt.Errorf("library %q has no id", dto.Name)
	}
	lib := models.Library{
		ID:        dto.ID,
		Name:      dto.Name,
		MediaType: dto.MediaType,
	}
	for _, f := range dto.Folders {
		lib.Folders = append(lib.Folders, models.Folder{ID: f.ID, FullPath: f.FullPath})
	}
	return lib, nil
}

func mapLibraryStats(dto libraryStatsDTO) models.LibraryStats {
	stats := models.LibraryStats{
		TotalItems:    dto.TotalItems,
		TotalSize:     dto.TotalSize,
		TotalDuration: dto.TotalDuration,
		NumAuthors:    dto.NumAuthors,
		NumGenres:     dto.NumGenres,
	}
	// newer servers report totalAuthors/totalGenres instead
	if stats.NumAuthors == 0 {
		stats.NumAuthors = dto.TotalAuthors
	}
	if stats.NumGenres == 0 {
		stats.NumGenres = dto.TotalGenres
	}
	return stats
}

func mapLibraryItem(dto libraryItemDTO) (models.LibraryItem, error) {
	if dto.ID == "" {
		return models.LibraryItem{}, fmt.Errorf("library item %q has no id", dto.Media.Metadata.Title)
	}
	md := dto.Media.Metadata

	return models.LibraryItem{
		ID:        dto.ID,
		LibraryID: dto.LibraryID,
		Title:     strings.TrimSpace(md.Title),
		Author:    authorOf(md),
		Narrator:  narratorOf(md),
		Duration:  dto.Media.Duration,
		ASIN:      strings.TrimSpace(md.ASIN),
		ISBN:      strings.TrimSpace(md.ISBN),
		IsMissing: dto.IsMissing,
	}, nil
}

func mapLibraryItems(dtos []libraryItemDTO) ([]models.LibraryItem, error) {
	items := make([]models.LibraryItem, 0, len(dtos))
	for _, dto := range dtos {
		item, err := mapLibraryItem(dto)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func mapItemDetail(dto libraryItemDTO) (*models.ItemDetail, error) {
	item, err := mapLibraryItem(dto)
	if err != nil {
		return nil, err
	}
	md := dto.Media.Metadata

	detail := &models.ItemDetail{
		LibraryItem:   item,
		Subtitle:      md.Subtitle,
		Description:   md.Description,
		Publisher:     md.Publisher,
		PublishedYear: md.PublishedYear,
		Language:      md.Language,
		Genres:        md.Genres,
		NumTracks:     len(dto.Media.AudioFiles),
	}
	if len(md.Series) > 0 {
		detail.SeriesName = md.Series[0].Name
		detail.SeriesSequence = md.Series[0].Sequence
	} else {
		detail.SeriesName = md.SeriesName
	}
	for _, f := range dto.Media.AudioFiles {
		detail.Size += f.Metadata.Size
	}
	return detail, nil
}

func mapMediaProgress(dto mediaProgressDTO) models.MediaProgress {
	p := models.MediaProgress{
		ID:            dto.ID,
		LibraryItemID: dto.LibraryItemID,
		Progress:      dto.Progress,
		CurrentTime:   dto.CurrentTime,
		Duration:      dto.Duration,
		IsFinished:    dto.IsFinished,
	}
	if dto.LastUpdate > 0 {
		p.LastUpdate = time.UnixMilli(dto.LastUpdate).UTC()
	}
	return p
}

func mapSearch(dto searchResponse) (*models.SearchResults, error) {
	hits := dto.Book
	if len(hits) == 0 {
		hits = dto.Podcast
	}

	res := &models.SearchResults{}
	for _, hit := range hits {
		item, err := mapLibraryItem(hit.LibraryItem)
		if err != nil {
			return nil, err
		}
		res.Books = append(res.Books, item)
	}
	for _, a := range dto.Authors {
		res.Authors = append(res.Authors, models.NamedCount{Name: a.Name, NumBooks: a.NumBooks})
	}
	for _, s := range dto.Series {
		res.Series = append(res.Series, models.NamedCount{Name: s.Series.Name, NumBooks: len(s.Books)})
	}
	for _, n := range dto.Narrators {
		res.Narrators = append(res.Narrators, models.NamedCount{Name: n.Name, NumBooks: n.NumBooks})
	}
	return res, nil
}

func authorOf(md metadataDTO) string {
	if md.AuthorName != "" {
		return md.AuthorName
	}
	names := make([]string, 0, len(md.Authors))
	for _, a := range md.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

func narratorOf(md metadataDTO) string {
	if md.NarratorName != "" {
		return md.NarratorName
	}
	return strings.Join(md.Narrators, ", ")
}
