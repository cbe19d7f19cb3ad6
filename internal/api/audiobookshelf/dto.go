package audiobookshelf

// Wire types for the Audiobookshelf REST API. They are decoded as-is and
// converted to internal/models types in mapper.go.

type librariesResponse struct {
	Libraries []libraryDTO `json:"libraries"`
}

type libraryDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Folders   []struct {
		ID       string `json:"id"`
		FullPath string `json:"fullPath"`
	} `json:"folders"`
}

type libraryStatsDTO struct {
	TotalItems    int     `json:"totalItems"`
	TotalSize     int64   `json:"totalSize"`
	TotalDuration float64 `json:"totalDuration"`
	NumAuthors    int     `json:"numAuthors"`
	NumGenres     int     `json:"numGenres"`
	TotalAuthors  int     `json:"totalAuthors"`
	TotalGenres   int     `json:"totalGenres"`
}

type libraryItemsResponse struct {
	Results []libraryItemDTO `json:"results"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Page    int              `json:"page"`
}

type libraryItemDTO struct {
	ID        string   `json:"id"`
	LibraryID string   `json:"libraryId"`
	MediaType string   `json:"mediaType"`
	IsMissing bool     `json:"isMissing"`
	Media     mediaDTO `json:"media"`
}

type mediaDTO struct {
	Duration   float64     `json:"duration"`
	NumTracks  int         `json:"numTracks"`
	Metadata   metadataDTO `json:"metadata"`
	AudioFiles []audioFile `json:"audioFiles"`
}

type audioFile struct {
	Metadata struct {
		Size int64 `json:"size"`
	} `json:"metadata"`
}

type metadataDTO struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	AuthorName    string   `json:"authorName"`
	NarratorName  string   `json:"narratorName"`
	SeriesName    string   `json:"seriesName"`
	ASIN          string   `json:"asin"`
	ISBN          string   `json:"isbn"`
	Description   string   `json:"description"`
	Publisher     string   `json:"publisher"`
	PublishedYear string   `json:"publishedYear"`
	Language      string   `json:"language"`
	Genres        []string `json:"genres"`
	Narrators     []string `json:"narrators"`
	Authors       []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Series []struct {
		Name     string `json:"name"`
		Sequence string `json:"sequence"`
	} `json:"series"`
}

type meResponse struct {
	ID            string             `json:"id"`
	Username      string             `json:"username"`
	MediaProgress []mediaProgressDTO `json:"mediaProgress"`
}

type mediaProgressDTO struct {
	ID            string  `json:"id"`
	LibraryItemID string  `json:"libraryItemId"`
	EpisodeID     string  `json:"episodeId"`
	Progress      float64 `json:"progress"`
	CurrentTime   float64 `json:"currentTime"`
	Duration      float64 `json:"duration"`
	IsFinished    bool    `json:"isFinished"`
	LastUpdate    int64   `json:"lastUpdate"` // unix millis
}

type matchRequest struct {
	Provider string `json:"provider"`
}

type matchResponse struct {
	Updated bool `json:"updated"`
}

type searchResponse struct {
	Book    []searchBookDTO `json:"book"`
	Podcast []searchBookDTO `json:"podcast"`
	Authors []struct {
		Name     string `json:"name"`
		NumBooks int    `json:"numBooks"`
	} `json:"authors"`
	Series []struct {
		Series struct {
			Name string `json:"name"`
		} `json:"series"`
		Books []struct{} `json:"books"`
	} `json:"series"`
	Narrators []struct {
		Name     string `json:"name"`
		NumBooks int    `json:"numBooks"`
	} `json:"narrators"`
}

type searchBookDTO struct {
	LibraryItem libraryItemDTO `json:"libraryItem"`
}
