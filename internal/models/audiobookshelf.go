package models

import "time"

// Library is an Audiobookshelf library
type Library struct {
	ID        string
	Name      string
	MediaType string
	Folders   []Folder
}

// Folder is a directory watched by a library
type Folder struct {
	ID       string
	FullPath string
}

// LibraryStats holds the aggregate numbers of a library
type LibraryStats struct {
	TotalItems    int
	TotalSize     int64   // bytes
	TotalDuration float64 // seconds
	NumAuthors    int
	NumGenres     int
}

// LibraryItem is one audiobook or podcast as listed in a library
type LibraryItem struct {
	ID        string
	LibraryID string
	Title     string
	Author    string
	Narrator  string
	Duration  float64 // seconds
	ASIN      string
	ISBN      string
	IsMissing bool

	// Progress and IsFinished are filled in from the user's media progress
	Progress   float64
	IsFinished bool
}

// DisplayTitle is the title, or the item id for untitled items
func (i LibraryItem) DisplayTitle() string {
	if i.Title == "" {
		return i.ID
	}
	return i.Title
}

// ApplyProgress copies the listening state of p onto the item
func (i *LibraryItem) ApplyProgress(p MediaProgress) {
	i.Progress = p.Progress
	i.IsFinished = p.IsFinished
}

// ItemPage is one page of a paginated library item listing
type ItemPage struct {
	Items []LibraryItem
	Total int
	Limit int
	Page  int
}

// ItemDetail is the expanded view of a single library item
type ItemDetail struct {
	LibraryItem
	Subtitle       string
	Description    string
	Publisher      string
	PublishedYear  string
	Language       string
	Genres         []string
	SeriesName     string
	SeriesSequence string
	NumTracks      int
	Size           int64 // bytes, summed over audio files
}

// MediaProgress is the current user's listening state for one item
type MediaProgress struct {
	ID            string
	LibraryItemID string
	Progress      float64 // 0..1
	CurrentTime   float64 // seconds
	Duration      float64 // seconds
	IsFinished    bool
	LastUpdate    time.Time
}

// Done reports whether the item counts as completed, either flagged or at 100%
func (p MediaProgress) Done() bool {
	return p.IsFinished || p.Progress >= 1.0
}

// ProgressItem is a media progress entry with the title of its item resolved
type ProgressItem struct {
	MediaProgress
	Title string
}

// ProgressUpdate is the body of a progress patch
type ProgressUpdate struct {
	IsFinished bool    `json:"isFinished"`
	Progress   float64 `json:"progress"`
}

// Finished is the update that marks an item as completely listened
func Finished() ProgressUpdate {
	return ProgressUpdate{IsFinished: true, Progress: 1}
}

// MatchResult is the outcome of a metadata match request
type MatchResult struct {
	Updated bool
}

// SearchResults groups the hits of a library search by kind
type SearchResults struct {
	Books     []LibraryItem
	Authors   []NamedCount
	Series    []NamedCount
	Narrators []NamedCount
}

// Empty reports whether the search found nothing at all
func (r *SearchResults) Empty() bool {
	return r == nil || len(r.Books)+len(r.Authors)+len(r.Series)+len(r.Narrators) == 0
}

// NamedCount is a search hit that only carries a name and a book count
type NamedCount struct {
	Name     string
	NumBooks int
}
