package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Settings keys as they appear in the persisted settings file
const (
	KeyMaxVideoLength        = "max_video_length"
	KeyMinVideoLength        = "min_video_length"
	KeyMaxThreads            = "max_threads"
	KeyDefaultFormat         = "default_format"
	KeyVideoQuality          = "video_quality"
	KeyAudioQuality          = "audio_quality"
	KeyExcludeKeywords       = "exclude_keywords"
	KeyIncludeKeywords       = "include_keywords"
	KeyExtractMetadata       = "extract_metadata"
	KeyEmbedThumbnail        = "embed_thumbnail"
	KeyDownloadSubtitles     = "download_subtitles"
	KeyPreferredSubtitleLang = "preferred_subtitle_lang"
)

// Default values
const (
	DefaultMaxVideoLength        = 3600 // 1 hour in seconds
	DefaultMinVideoLength        = 0
	DefaultMaxThreads            = 4
	DefaultFormat                = "mp4"
	DefaultVideoQuality          = "best"
	DefaultAudioQuality          = "192"
	DefaultPreferredSubtitleLang = "en"
)

// DefaultExcludeKeywords rejects common non-original recordings
var DefaultExcludeKeywords = []string{"instrumental", "karaoke"}

// Formats accepted for jobs
const (
	FormatMP3 = "mp3"
	FormatMP4 = "mp4"
)

// Settings is an immutable snapshot of the merged option set. Jobs capture
// one at creation so configuration cannot drift mid-run.
type Settings struct {
	MaxVideoLength        int      `mapstructure:"max_video_length" json:"max_video_length"`
	MinVideoLength        int      `mapstructure:"min_video_length" json:"min_video_length"`
	MaxThreads            int      `mapstructure:"max_threads" json:"max_threads"`
	DefaultFormat         string   `mapstructure:"default_format" json:"default_format"`
	VideoQuality          string   `mapstructure:"video_quality" json:"video_quality"`
	AudioQuality          string   `mapstructure:"audio_quality" json:"audio_quality"`
	ExcludeKeywords       []string `mapstructure:"exclude_keywords" json:"exclude_keywords"`
	IncludeKeywords       []string `mapstructure:"include_keywords" json:"include_keywords"`
	ExtractMetadata       bool     `mapstructure:"extract_metadata" json:"extract_metadata"`
	EmbedThumbnail        bool     `mapstructure:"embed_thumbnail" json:"embed_thumbnail"`
	DownloadSubtitles     bool     `mapstructure:"download_subtitles" json:"download_subtitles"`
	PreferredSubtitleLang string   `mapstructure:"preferred_subtitle_lang" json:"preferred_subtitle_lang"`
}

// Store merges system defaults with the persisted settings file and hands out
// snapshots. Saves are whole-document overwrites, last writer wins.
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string
}

// NewStore loads the settings file at path, falling back to defaults when the
// file is missing or unreadable.
func NewStore(path string) *Store {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		// a missing or corrupt file means defaults only
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			v = viper.New()
			setDefaults(v)
			v.SetConfigFile(path)
			v.SetConfigType("json")
		}
	}
	return &Store{v: v, path: path}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyMaxVideoLength, DefaultMaxVideoLength)
	v.SetDefault(KeyMinVideoLength, DefaultMinVideoLength)
	v.SetDefault(KeyMaxThreads, DefaultMaxThreads)
	v.SetDefault(KeyDefaultFormat, DefaultFormat)
	v.SetDefault(KeyVideoQuality, DefaultVideoQuality)
	v.SetDefault(KeyAudioQuality, DefaultAudioQuality)
	v.SetDefault(KeyExcludeKeywords, DefaultExcludeKeywords)
	v.SetDefault(KeyIncludeKeywords, []string{})
	v.SetDefault(KeyExtractMetadata, true)
	v.SetDefault(KeyEmbedThumbnail, true)
	v.SetDefault(KeyDownloadSubtitles, false)
	v.SetDefault(KeyPreferredSubtitleLang, DefaultPreferredSubtitleLang)
}

// Snapshot returns the current merged option set.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return unmarshal(s.v)
}

// SnapshotWith returns the current option set with per-job overrides applied
// on top. The store itself is not modified.
func (s *Store) SnapshotWith(overrides map[string]any) Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(overrides) == 0 {
		return unmarshal(s.v)
	}
	merged := viper.New()
	setDefaults(merged)
	if err := merged.MergeConfigMap(s.v.AllSettings()); err != nil {
		return unmarshal(s.v)
	}
	for key, value := range overrides {
		merged.Set(key, value)
	}
	return unmarshal(merged)
}

// Save applies the overrides and rewrites the whole settings document.
func (s *Store) Save(overrides map[string]any) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range overrides {
		s.v.Set(key, value)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return unmarshal(s.v), fmt.Errorf("creating settings directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return unmarshal(s.v), fmt.Errorf("writing settings: %w", err)
	}
	return unmarshal(s.v), nil
}

func unmarshal(v *viper.Viper) Settings {
	var out Settings
	if err := v.Unmarshal(&out); err != nil {
		// defaults are always unmarshalable; this only fires on a malformed
		// override value, in which case defaults are the safe answer
		fresh := viper.New()
		setDefaults(fresh)
		_ = fresh.Unmarshal(&out)
	}
	return out
}
