package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/ytd/internal/model"
	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// Default values
const (
	DefaultPlaylistName = "Unknown Playlist"
	PlaylistSuffix      = " Playlist"
	MinPrefixLength     = 10
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// fetchFunc returns the entries of the playlist with the given id
type fetchFunc func(ctx context.Context, playlistID string) ([]*model.PlaylistEntry, error)

// PlaylistService lists the entries of a playlist URL so each entry can be
// submitted as its own download request
type PlaylistService struct {
	timeout time.Duration
	fetch   fetchFunc
}

// NewPlaylistService creates a new playlist service backed by the ytdlp library
func NewPlaylistService() *PlaylistService {
	return &PlaylistService{
		timeout: DefaultParseTimeout,
		fetch:   fetchWithLibrary,
	}
}

// SetTimeout sets the timeout for listing operations
func (p *PlaylistService) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// IsPlaylistURL reports whether rawURL carries a playlist id
func IsPlaylistURL(rawURL string) bool {
	return extractPlaylistID(rawURL) != ""
}

// List fetches the playlist behind rawURL
func (p *PlaylistService) List(ctx context.Context, rawURL string) (*model.Playlist, error) {
	playlistID := extractPlaylistID(rawURL)
	if playlistID == "" {
		return nil, fmt.Errorf("invalid playlist URL: %s", rawURL)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	entries, err := p.fetch(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	playlist := model.NewPlaylist(playlistID, rawURL)
	for _, e := range entries {
		playlist.AddEntry(e)
	}
	playlist.Title = extractPlaylistTitle(playlist.Entries)

	return playlist, nil
}

// fetchWithLibrary lists a playlist through github.com/ytget/ytdlp
func fetchWithLibrary(ctx context.Context, playlistID string) ([]*model.PlaylistEntry, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, &model.PlaylistEntry{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	return entries, nil
}

// extractPlaylistID extracts the playlist ID from various URL formats
func extractPlaylistID(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if id := u.Query().Get("list"); id != "" {
			return id
		}
	}

	if strings.Contains(rawURL, PlaylistParam) {
		parts := strings.Split(rawURL, PlaylistParam)
		if len(parts) > 1 {
			playlistPart := parts[1]
			if strings.Contains(playlistPart, ParamSeparator) {
				playlistPart = strings.Split(playlistPart, ParamSeparator)[0]
			}
			return playlistPart
		}
	}
	return ""
}

// extractPlaylistTitle generates a title for the playlist based on entries
func extractPlaylistTitle(entries []*model.PlaylistEntry) string {
	if len(entries) == 0 {
		return DefaultPlaylistName
	}
	if len(entries) > 1 {
		commonPrefix := findCommonPrefix(entries[0].Title, entries[1].Title)
		if len(commonPrefix) > MinPrefixLength {
			return strings.TrimSpace(commonPrefix) + PlaylistSuffix
		}
	}
	return entries[0].Title + PlaylistSuffix
}

// findCommonPrefix finds the common prefix between two strings. The prefix
// always ends on a rune boundary.
func findCommonPrefix(s1, s2 string) string {
	r1, r2 := []rune(s1), []rune(s2)
	minLen := min(len(r1), len(r2))
	for i := 0; i < minLen; i++ {
		if r1[i] != r2[i] {
			return string(r1[:i])
		}
	}
	return string(r1[:minLen])
}
