// Package scanner walks the media root and builds the listing tree served by
// the page handlers.
package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"videolib/models"
)

// videoExtensions is the allow-list for files treated as videos, matched
// case-insensitively against the filename extension.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mkv":  true,
	".mov":  true,
	".webm": true,
}

// IsVideoFile reports whether the filename carries an allowed video extension.
func IsVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

// MetadataSource resolves display metadata for a video path. Lookups are
// read-only; the scanner never writes.
type MetadataSource interface {
	Get(videoPath string) models.VideoMetadata
}

// Scanner builds the scan tree for a media root.
type Scanner struct {
	root     string
	metadata MetadataSource
}

// New creates a scanner over the given media root.
func New(root string, metadata MetadataSource) *Scanner {
	return &Scanner{root: root, metadata: metadata}
}

// Scan walks the media root exactly one level deep: video files in the root
// become video entries, first-level subfolders containing videos become
// folder entries, and folders without any qualifying video are omitted.
// Filesystem failures are logged and yield a partial or empty tree; a scan
// never fails a page render.
func (s *Scanner) Scan() []models.ScanEntry {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		log.Error().Err(err).Str("root", s.root).Msg("Failed to read media root")
		return nil
	}

	var tree []models.ScanEntry
	for _, entry := range entries {
		if entry.IsDir() {
			contents := s.scanFolder(entry.Name())
			if len(contents) == 0 {
				continue
			}
			tree = append(tree, models.ScanEntry{
				Type:     models.EntryFolder,
				Name:     entry.Name(),
				Contents: contents,
				Count:    len(contents),
			})
			continue
		}

		if !IsVideoFile(entry.Name()) {
			continue
		}
		video := s.videoEntry(entry.Name(), entry.Name())
		tree = append(tree, models.ScanEntry{
			Type:       models.EntryVideo,
			Name:       video.Name,
			URL:        video.URL,
			Cover:      video.Cover,
			Views:      video.Views,
			UploadDate: video.UploadDate,
			Duration:   video.Duration,
		})
	}

	return tree
}

// ListFolders returns the names of first-level subfolders of the media root,
// used by the upload form's folder selector.
func (s *Scanner) ListFolders() []string {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		log.Error().Err(err).Str("root", s.root).Msg("Failed to list media folders")
		return nil
	}

	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	return folders
}

// scanFolder lists qualifying videos directly inside one subfolder. Deeper
// nesting is not recursed.
func (s *Scanner) scanFolder(folder string) []models.VideoEntry {
	entries, err := os.ReadDir(filepath.Join(s.root, folder))
	if err != nil {
		log.Warn().Err(err).Str("folder", folder).Msg("Failed to read media subfolder")
		return nil
	}

	var videos []models.VideoEntry
	for _, entry := range entries {
		if entry.IsDir() || !IsVideoFile(entry.Name()) {
			continue
		}
		videos = append(videos, s.videoEntry(entry.Name(), folder+"/"+entry.Name()))
	}
	return videos
}

func (s *Scanner) videoEntry(name, relPath string) models.VideoEntry {
	meta := s.metadata.Get(relPath)
	return models.VideoEntry{
		Name:       name,
		URL:        "/videos/" + relPath,
		Cover:      meta.CoverImage,
		Views:      meta.Views,
		UploadDate: meta.UploadDate,
		Duration:   meta.Duration,
	}
}
