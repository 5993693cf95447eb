package platform

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ytget/ytd/internal/model"
)

func TestNewPlaylistService(t *testing.T) {
	service := NewPlaylistService()

	if service == nil {
		t.Fatal("service should not be nil")
	}
	if service.timeout != DefaultParseTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultParseTimeout, service.timeout)
	}

	service.SetTimeout(5 * time.Second)
	if service.timeout != 5*time.Second {
		t.Errorf("expected timeout %v, got %v", 5*time.Second, service.timeout)
	}
}

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"playlist page", "https://www.youtube.com/playlist?list=PL123", "PL123"},
		{"watch with list", "https://www.youtube.com/watch?v=abc&list=PL456&index=2", "PL456"},
		{"no list", "https://www.youtube.com/watch?v=abc", ""},
		{"unparsable url", "list=PL789&x", "PL789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractPlaylistID(tt.url); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestIsPlaylistURL(t *testing.T) {
	if !IsPlaylistURL("https://www.youtube.com/playlist?list=PL123") {
		t.Error("expected playlist URL")
	}
	if IsPlaylistURL("https://example/video123") {
		t.Error("expected plain video URL")
	}
}

func TestList(t *testing.T) {
	service := &PlaylistService{
		timeout: time.Second,
		fetch: func(ctx context.Context, id string) ([]*model.PlaylistEntry, error) {
			if id != "PL123" {
				t.Errorf("unexpected playlist id %q", id)
			}
			return []*model.PlaylistEntry{
				{ID: "a", Title: "Concert Recording Part 1", URL: "https://www.youtube.com/watch?v=a"},
				{ID: "b", Title: "Concert Recording Part 2", URL: "https://www.youtube.com/watch?v=b"},
			}, nil
		},
	}

	playlist, err := service.List(context.Background(), "https://www.youtube.com/playlist?list=PL123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if playlist.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", playlist.Len())
	}
	if playlist.Title != "Concert Recording Part Playlist" {
		t.Errorf("unexpected title %q", playlist.Title)
	}
}

func TestList_Errors(t *testing.T) {
	service := &PlaylistService{
		fetch: func(ctx context.Context, id string) ([]*model.PlaylistEntry, error) {
			return nil, errors.New("boom")
		},
	}

	if _, err := service.List(context.Background(), "https://example/video123"); err == nil {
		t.Error("expected error for URL without playlist id")
	}
	if _, err := service.List(context.Background(), "https://www.youtube.com/playlist?list=PL1"); err == nil {
		t.Error("expected fetch error to propagate")
	}
}

func TestExtractPlaylistTitle(t *testing.T) {
	if got := extractPlaylistTitle(nil); got != DefaultPlaylistName {
		t.Errorf("expected %q, got %q", DefaultPlaylistName, got)
	}

	single := []*model.PlaylistEntry{{Title: "Only"}}
	if got := extractPlaylistTitle(single); got != "Only"+PlaylistSuffix {
		t.Errorf("unexpected title %q", got)
	}

	short := []*model.PlaylistEntry{{Title: "Ab one"}, {Title: "Ab two"}}
	if got := extractPlaylistTitle(short); got != "Ab one"+PlaylistSuffix {
		t.Errorf("short common prefix should fall back to first title, got %q", got)
	}
}

func TestFindCommonPrefix(t *testing.T) {
	tests := []struct {
		s1, s2, expected string
	}{
		{"hello world", "hello there", "hello "},
		{"abc", "abc", "abc"},
		{"abc", "xyz", ""},
		{"", "abc", ""},
		{"Лекция мир", "Лекция мар", "Лекция м"},
		{"講座第一回", "講座第二回", "講座第"},
	}

	for _, tt := range tests {
		got := findCommonPrefix(tt.s1, tt.s2)
		if got != tt.expected {
			t.Errorf("findCommonPrefix(%q, %q) = %q, expected %q", tt.s1, tt.s2, got, tt.expected)
		}
		if !utf8.ValidString(got) {
			t.Errorf("findCommonPrefix(%q, %q) returned invalid UTF-8 %q", tt.s1, tt.s2, got)
		}
	}
}

func TestExtractPlaylistTitle_Multibyte(t *testing.T) {
	entries := []*model.PlaylistEntry{
		{Title: "Курс по Go: занятие 1"},
		{Title: "Курс по Go: задачи"},
	}

	got := extractPlaylistTitle(entries)
	if !utf8.ValidString(got) {
		t.Fatalf("extractPlaylistTitle() returned invalid UTF-8 %q", got)
	}
	if want := "Курс по Go: за" + PlaylistSuffix; got != want {
		t.Errorf("extractPlaylistTitle() = %q, expected %q", got, want)
	}
}
