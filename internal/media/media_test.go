package media

import (
	"testing"
	"time"
)

func TestPlaylistID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"plain playlist", "https://www.youtube.com/playlist?list=PLabc123", "PLabc123"},
		{"watch with list", "https://www.youtube.com/watch?v=xyz&list=PLabc123&index=2", "PLabc123"},
		{"fragment stripped", "https://www.youtube.com/playlist?list=PLabc123#top", "PLabc123"},
		{"no playlist", "https://www.youtube.com/watch?v=xyz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlaylistID(tt.url); got != tt.expected {
				t.Errorf("PlaylistID(%q) = %q, expected %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestIsPlaylistURL(t *testing.T) {
	if !IsPlaylistURL("https://www.youtube.com/playlist?list=PLabc") {
		t.Error("Expected playlist URL to be detected")
	}
	if IsPlaylistURL("https://www.youtube.com/watch?v=xyz") {
		t.Error("Expected plain video URL to not be a playlist")
	}
}

func TestProgressUpdatePercent(t *testing.T) {
	tests := []struct {
		name     string
		update   ProgressUpdate
		expected int
	}{
		{"halfway", ProgressUpdate{Status: StatusDownloading, DownloadedBytes: 50, TotalBytes: 100}, 50},
		{"unknown total", ProgressUpdate{Status: StatusDownloading, DownloadedBytes: 50}, -1},
		{"finished", ProgressUpdate{Status: StatusFinished}, 100},
		{"overshoot clamped", ProgressUpdate{Status: StatusDownloading, DownloadedBytes: 150, TotalBytes: 100}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.update.Percent(); got != tt.expected {
				t.Errorf("Percent() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestVideoFormat(t *testing.T) {
	tests := []struct {
		quality  string
		expected string
	}{
		{"1080p", "bestvideo[height<=1080]+bestaudio/best[height<=1080]"},
		{"720p", "bestvideo[height<=720]+bestaudio/best[height<=720]"},
		{"480p", "bestvideo[height<=480]+bestaudio/best[height<=480]"},
		{"best", "bestvideo+bestaudio/best"},
		{"", "bestvideo+bestaudio/best"},
	}

	for _, tt := range tests {
		if got := videoFormat(tt.quality); got != tt.expected {
			t.Errorf("videoFormat(%q) = %q, expected %q", tt.quality, got, tt.expected)
		}
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		eta      time.Duration
		expected string
	}{
		{90 * time.Second, "1:30"},
		{3661 * time.Second, "1:01:01"},
		{0, ""},
	}

	for _, tt := range tests {
		if got := FormatETA(tt.eta); got != tt.expected {
			t.Errorf("FormatETA(%v) = %q, expected %q", tt.eta, got, tt.expected)
		}
	}
}
