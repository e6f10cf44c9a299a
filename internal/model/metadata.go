package model

// Metadata is the narrow typed view over what the extraction engine returns
// for one source URL. Raw keeps every unmodeled field as an opaque bag.
type Metadata struct {
	Title       string         `json:"title"`
	Duration    *float64       `json:"duration"`
	Uploader    string         `json:"uploader"`
	Channel     string         `json:"channel,omitempty"`
	Thumbnail   string         `json:"thumbnail,omitempty"`
	WebpageURL  string         `json:"webpage_url"`
	UploadDate  string         `json:"upload_date,omitempty"`
	Description string         `json:"description,omitempty"`
	ViewCount   int64          `json:"view_count,omitempty"`
	Entries     []*Metadata    `json:"entries,omitempty"`
	Raw         map[string]any `json:"-"`
}

// IsCollection reports whether the item expands into child entries.
func (m *Metadata) IsCollection() bool {
	return len(m.Entries) > 0
}

// DurationSeconds returns the duration in whole seconds and whether it is
// known. A literal zero counts as known; only an absent duration is unknown.
func (m *Metadata) DurationSeconds() (int, bool) {
	if m.Duration == nil {
		return 0, false
	}
	return int(*m.Duration), true
}

// Artist returns the best available performer name for tag embedding.
func (m *Metadata) Artist() string {
	if m.Uploader != "" {
		return m.Uploader
	}
	return m.Channel
}

// SourceURL returns the canonical page URL when the extractor reported one,
// falling back to the submitted URL.
func (m *Metadata) SourceURL(fallback string) string {
	if m.WebpageURL != "" {
		return m.WebpageURL
	}
	return fallback
}
