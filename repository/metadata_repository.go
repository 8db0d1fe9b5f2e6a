package repository

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"videolib/database"
	"videolib/models"
)

// adminUserID is the seeded admin account, used when an upsert does not say
// who uploaded the video.
const adminUserID = 1

// metadataColumns is the allow-list for dynamic upserts. Arbitrary field names
// arrive from callers; anything outside this set is rejected before any SQL is
// built.
var metadataColumns = map[string]bool{
	"cover_image": true,
	"views":       true,
	"upload_date": true,
	"duration":    true,
	"uploaded_by": true,
}

// MetadataRepository handles database operations for per-video metadata,
// keyed by the video path relative to the media root.
type MetadataRepository struct {
	db *database.DB
}

// NewMetadataRepository creates a new metadata repository
func NewMetadataRepository(db *database.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// DefaultMetadata returns the synthesized record used for any video without a
// stored row. Nothing is persisted.
func DefaultMetadata(videoPath string) models.VideoMetadata {
	return models.VideoMetadata{
		VideoPath:  videoPath,
		CoverImage: models.DefaultCoverImage,
		Views:      0,
		UploadDate: time.Now().Format("2006-01-02"),
		Duration:   models.DefaultDuration,
	}
}

// Get retrieves the metadata for a video path. A missing row is a normal
// state and yields defaults; internal errors degrade to the same defaults so
// a page render never fails on a metadata lookup.
func (r *MetadataRepository) Get(videoPath string) models.VideoMetadata {
	query := `
		SELECT id, video_path, cover_image, views, upload_date, duration, uploaded_by
		FROM video_metadata
		WHERE video_path = ?
	`

	var meta models.VideoMetadata
	var coverImage, uploadDate, duration sql.NullString
	var uploadedBy sql.NullInt64

	err := r.db.QueryRow(query, videoPath).Scan(
		&meta.ID, &meta.VideoPath, &coverImage, &meta.Views,
		&uploadDate, &duration, &uploadedBy,
	)
	if err == sql.ErrNoRows {
		return DefaultMetadata(videoPath)
	}
	if err != nil {
		log.Warn().Err(err).Str("video_path", videoPath).Msg("Metadata lookup failed, using defaults")
		return DefaultMetadata(videoPath)
	}

	meta.CoverImage = models.DefaultCoverImage
	if coverImage.Valid && coverImage.String != "" {
		meta.CoverImage = coverImage.String
	}
	meta.UploadDate = time.Now().Format("2006-01-02")
	if uploadDate.Valid && uploadDate.String != "" {
		meta.UploadDate = uploadDate.String
	}
	meta.Duration = models.DefaultDuration
	if duration.Valid && duration.String != "" {
		meta.Duration = duration.String
	}
	if uploadedBy.Valid {
		meta.UploadedBy = int(uploadedBy.Int64)
	}

	return meta
}

// Exists reports whether a metadata row is stored for the path.
func (r *MetadataRepository) Exists(videoPath string) (bool, error) {
	var id int
	err := r.db.QueryRow(`SELECT id FROM video_metadata WHERE video_path = ?`, videoPath).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check metadata row: %w", err)
	}
	return true, nil
}

// Upsert inserts a row with defaults for unspecified fields, or updates only
// the supplied fields on an existing row. Field names are validated against
// the schema before any statement is constructed.
func (r *MetadataRepository) Upsert(videoPath string, fields map[string]any) error {
	if videoPath == "" {
		return fmt.Errorf("video path is required")
	}

	columns := make([]string, 0, len(fields))
	for name := range fields {
		if !metadataColumns[name] {
			return fmt.Errorf("unknown metadata field %q", name)
		}
		columns = append(columns, name)
	}
	sort.Strings(columns)

	exists, err := r.Exists(videoPath)
	if err != nil {
		return err
	}

	if exists {
		if len(columns) == 0 {
			return nil
		}
		assignments := make([]string, 0, len(columns))
		values := make([]any, 0, len(columns)+1)
		for _, name := range columns {
			assignments = append(assignments, name+" = ?")
			values = append(values, fields[name])
		}
		values = append(values, videoPath)

		query := "UPDATE video_metadata SET " + strings.Join(assignments, ", ") + " WHERE video_path = ?"
		if _, err := r.db.Exec(query, values...); err != nil {
			return fmt.Errorf("failed to update metadata: %w", err)
		}
		return nil
	}

	row := DefaultMetadata(videoPath)
	insert := map[string]any{
		"cover_image": row.CoverImage,
		"views":       row.Views,
		"upload_date": row.UploadDate,
		"duration":    row.Duration,
		"uploaded_by": adminUserID,
	}
	for _, name := range columns {
		insert[name] = fields[name]
	}

	query := `
		INSERT INTO video_metadata (video_path, cover_image, views, upload_date, duration, uploaded_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		videoPath, insert["cover_image"], insert["views"],
		insert["upload_date"], insert["duration"], insert["uploaded_by"],
	)
	if err != nil {
		return fmt.Errorf("failed to insert metadata: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter by one as a single server-side
// update, so concurrent requests for the same video never lose counts.
// Returns false when no row exists for the path.
func (r *MetadataRepository) IncrementViews(videoPath string) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE video_metadata SET views = views + 1 WHERE video_path = ?`,
		videoPath,
	)
	if err != nil {
		return false, fmt.Errorf("failed to increment views: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

// Delete removes the metadata row for a path. Removing the backing file is
// the caller's job; the two operations are not transactional, so a partial
// failure can leave an orphaned file or row.
func (r *MetadataRepository) Delete(videoPath string) error {
	if _, err := r.db.Exec(`DELETE FROM video_metadata WHERE video_path = ?`, videoPath); err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}
