package extract

// ArtistCredit is a single entry of a multi-artist credit list.
type ArtistCredit struct {
	Name string `json:"name"`
}

// RawInfo is the metadata JSON emitted by yt-dlp for a single source.
// Only the fields the pipeline consumes are decoded; everything else in
// the payload is ignored.
type RawInfo struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Track         string         `json:"track"`
	Artist        string         `json:"artist"`
	Artists       []ArtistCredit `json:"artists"`
	AlbumArtist   string         `json:"album_artist"`
	Album         string         `json:"album"`
	PlaylistTitle string         `json:"playlist_title"`
	ReleaseDate   string         `json:"release_date"`
	UploadDate    string         `json:"upload_date"`
	ReleaseYear   int            `json:"release_year"`
	Description   string         `json:"description"`
	Duration      float64        `json:"duration"`
	ViewCount     int64          `json:"view_count"`
	LikeCount     int64          `json:"like_count"`
	Genre         string         `json:"genre"`
	Thumbnail     string         `json:"thumbnail"`
	Uploader      string         `json:"uploader"`
	Channel       string         `json:"channel"`
	Entries       []RawInfo      `json:"entries"`
}

// Flatten collapses a playlist payload to its first entry. yt-dlp wraps
// playlist members in an entries array; the pipeline only processes one
// track per job, so the first entry stands in for the whole, inheriting
// the playlist title when the entry has none.
func (i *RawInfo) Flatten() *RawInfo {
	if len(i.Entries) == 0 {
		return i
	}
	entry := i.Entries[0]
	if entry.PlaylistTitle == "" {
		entry.PlaylistTitle = i.PlaylistTitle
		if entry.PlaylistTitle == "" {
			entry.PlaylistTitle = i.Title
		}
	}
	return &entry
}
