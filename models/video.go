package models

// DefaultCoverImage is shown for any video without a stored cover.
const DefaultCoverImage = "/static/images/video_player.gif"

// DefaultDuration is used until a real duration is recorded for a video.
const DefaultDuration = "10:30"

// VideoMetadata is the persisted per-video record, keyed by the path of the
// file relative to the media root. A video with no row is a normal state and
// is rendered with defaults.
type VideoMetadata struct {
	ID         int    `json:"id"`
	VideoPath  string `json:"video_path"`
	CoverImage string `json:"cover_image"`
	Views      int    `json:"views"`
	UploadDate string `json:"upload_date"` // yyyy-mm-dd
	Duration   string `json:"duration"`
	UploadedBy int    `json:"uploaded_by,omitempty"`
}

// EntryType distinguishes the two kinds of scan tree entries.
type EntryType string

// Entry type constants
const (
	EntryVideo  EntryType = "video"
	EntryFolder EntryType = "folder"
)

// VideoEntry is a single playable video in the scan tree.
type VideoEntry struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Cover      string `json:"cover"`
	Views      int    `json:"views"`
	UploadDate string `json:"upload_date"`
	Duration   string `json:"duration"`
}

// ScanEntry is one top-level item of the scan tree: either a video in the
// media root itself, or a first-level folder with its videos.
type ScanEntry struct {
	Type EntryType `json:"type"`
	Name string    `json:"name"`

	// Video fields, set when Type == EntryVideo.
	URL        string `json:"url,omitempty"`
	Cover      string `json:"cover,omitempty"`
	Views      int    `json:"views,omitempty"`
	UploadDate string `json:"upload_date,omitempty"`
	Duration   string `json:"duration,omitempty"`

	// Folder fields, set when Type == EntryFolder.
	Contents []VideoEntry `json:"contents,omitempty"`
	Count    int          `json:"count,omitempty"`
}
