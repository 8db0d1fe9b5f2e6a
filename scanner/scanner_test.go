package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"videolib/models"

	"github.com/stretchr/testify/assert"
)

// stubMetadata serves canned metadata and synthesizes defaults for the rest,
// mirroring the repository contract.
type stubMetadata map[string]models.VideoMetadata

func (s stubMetadata) Get(videoPath string) models.VideoMetadata {
	if meta, ok := s[videoPath]; ok {
		return meta
	}
	return models.VideoMetadata{
		VideoPath:  videoPath,
		CoverImage: models.DefaultCoverImage,
		UploadDate: time.Now().Format("2006-01-02"),
		Duration:   models.DefaultDuration,
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
}

func TestScanner_TreeShape(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "intro.mp4"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "Movies", "a.mp4"))
	writeFile(t, filepath.Join(root, "Movies", "b.MKV"))
	writeFile(t, filepath.Join(root, "Movies", "cover.jpg"))
	if err := os.MkdirAll(filepath.Join(root, "Empty"), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	s := New(root, stubMetadata{})
	tree := s.Scan()

	assert.Len(t, tree, 2, "one folder entry and one video entry")

	var video, folder *models.ScanEntry
	for i := range tree {
		switch tree[i].Type {
		case models.EntryVideo:
			video = &tree[i]
		case models.EntryFolder:
			folder = &tree[i]
		}
	}

	if assert.NotNil(t, video) {
		assert.Equal(t, "intro.mp4", video.Name)
		assert.Equal(t, "/videos/intro.mp4", video.URL)
		assert.Equal(t, models.DefaultCoverImage, video.Cover)
	}

	if assert.NotNil(t, folder) {
		assert.Equal(t, "Movies", folder.Name)
		assert.Equal(t, 2, folder.Count)
		assert.Len(t, folder.Contents, 2)
		assert.Equal(t, "/videos/Movies/a.mp4", folder.Contents[0].URL)
		assert.Equal(t, "b.MKV", folder.Contents[1].Name, "extension match is case-insensitive")
	}
}

func TestScanner_DoesNotRecurseBeyondOneLevel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Movies", "a.mp4"))
	writeFile(t, filepath.Join(root, "Movies", "Deep", "hidden.mp4"))

	tree := New(root, stubMetadata{}).Scan()

	assert.Len(t, tree, 1)
	assert.Equal(t, 1, tree[0].Count, "videos in nested folders are not listed")
}

func TestScanner_MetadataResolved(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Movies", "a.mp4"))

	meta := stubMetadata{
		"Movies/a.mp4": {
			VideoPath:  "Movies/a.mp4",
			CoverImage: "/static/covers/a.jpg",
			Views:      1500,
			UploadDate: "2024-05-01",
			Duration:   "12:34",
		},
	}

	tree := New(root, meta).Scan()
	assert.Len(t, tree, 1)
	video := tree[0].Contents[0]
	assert.Equal(t, "/static/covers/a.jpg", video.Cover)
	assert.Equal(t, 1500, video.Views)
	assert.Equal(t, "12:34", video.Duration)
}

func TestScanner_MissingRootYieldsEmptyTree(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"), stubMetadata{})
	assert.Empty(t, s.Scan())
	assert.Empty(t, s.ListFolders())
}

func TestScanner_ListFolders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Movies", "a.mp4"))
	writeFile(t, filepath.Join(root, "clip.mp4"))
	if err := os.MkdirAll(filepath.Join(root, "Empty"), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	folders := New(root, stubMetadata{}).ListFolders()
	assert.Equal(t, []string{"Empty", "Movies"}, folders)
}

func TestIsVideoFile(t *testing.T) {
	assert.True(t, IsVideoFile("a.mp4"))
	assert.True(t, IsVideoFile("A.WEBM"))
	assert.True(t, IsVideoFile("movie.MoV"))
	assert.False(t, IsVideoFile("a.txt"))
	assert.False(t, IsVideoFile("mp4"))
	assert.False(t, IsVideoFile("archive.mp4.zip"))
}
