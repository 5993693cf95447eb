package model

import "time"

// PlaylistEntry is a single item of a playlist listing
type PlaylistEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Playlist is the result of listing a playlist URL
type Playlist struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	URL       string           `json:"url"`
	Entries   []*PlaylistEntry `json:"entries"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewPlaylist creates a new playlist instance
func NewPlaylist(id, url string) *Playlist {
	return &Playlist{
		ID:        id,
		URL:       url,
		Entries:   make([]*PlaylistEntry, 0),
		CreatedAt: time.Now(),
	}
}

// AddEntry appends an entry to the playlist
func (p *Playlist) AddEntry(entry *PlaylistEntry) {
	p.Entries = append(p.Entries, entry)
}

// Len returns the number of entries
func (p *Playlist) Len() int {
	return len(p.Entries)
}

// URLs returns entry URLs in playlist order
func (p *Playlist) URLs() []string {
	urls := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		urls = append(urls, e.URL)
	}
	return urls
}
