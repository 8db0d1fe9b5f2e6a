package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"videolib/database"
	"videolib/iptv"
	"videolib/models"
)

// IPTVRepository handles database operations for IPTV channels and playlists.
// No HTTP route mutates these tables; they are managed through this layer.
type IPTVRepository struct {
	db *database.DB
}

// NewIPTVRepository creates a new IPTV repository
func NewIPTVRepository(db *database.DB) *IPTVRepository {
	return &IPTVRepository{db: db}
}

// CreatePlaylist stores a raw M3U document and imports its channels.
func (r *IPTVRepository) CreatePlaylist(name, m3uContent string, createdBy int) (*models.IPTVPlaylist, error) {
	query := `
		INSERT INTO iptv_playlists (name, m3u_content, created_by)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query, name, m3uContent, nullInt(createdBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	playlist := &models.IPTVPlaylist{
		ID:         int(id),
		Name:       name,
		M3UContent: m3uContent,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now(),
	}

	if err := r.importPlaylistChannels(playlist); err != nil {
		// The playlist row itself is valid; channel import is best-effort.
		log.Warn().Err(err).Str("playlist", name).Msg("Channel import from playlist failed")
	}

	return playlist, nil
}

// PlaylistExists reports whether a playlist with the name was already imported.
func (r *IPTVRepository) PlaylistExists(name string) (bool, error) {
	var id int
	err := r.db.QueryRow(`SELECT id FROM iptv_playlists WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check playlist: %w", err)
	}
	return true, nil
}

// ListPlaylists returns all playlists, newest first, without their M3U bodies.
func (r *IPTVRepository) ListPlaylists() ([]models.IPTVPlaylist, error) {
	rows, err := r.db.Query(`
		SELECT id, name, created_by, created_at
		FROM iptv_playlists
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer closeRows(rows)

	var playlists []models.IPTVPlaylist
	for rows.Next() {
		var p models.IPTVPlaylist
		var createdBy sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &createdBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		if createdBy.Valid {
			p.CreatedBy = int(createdBy.Int64)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return playlists, nil
}

// AddChannel inserts a channel, applying the schema defaults for group title
// and quality when the caller leaves them empty.
func (r *IPTVRepository) AddChannel(ch *models.IPTVChannel) error {
	if ch.GroupTitle == "" {
		ch.GroupTitle = "General"
	}
	if ch.Quality == "" {
		ch.Quality = "HD"
	}

	query := `
		INSERT INTO iptv_channels (name, stream_url, category, group_title, logo_url,
								   is_live, quality, country_code, added_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		ch.Name, ch.StreamURL, nullString(ch.Category), ch.GroupTitle,
		nullString(ch.LogoURL), ch.IsLive, ch.Quality,
		nullString(ch.CountryCode), nullInt(ch.AddedBy),
	)
	if err != nil {
		return fmt.Errorf("failed to add channel: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	ch.ID = int(id)
	ch.AddedAt = time.Now()
	ch.IsActive = true
	return nil
}

// ListActiveChannels returns all active channels grouped by title order.
func (r *IPTVRepository) ListActiveChannels() ([]models.IPTVChannel, error) {
	rows, err := r.db.Query(`
		SELECT id, name, stream_url, category, group_title, logo_url,
			   is_live, quality, country_code, added_by, added_at, is_active
		FROM iptv_channels
		WHERE is_active = TRUE
		ORDER BY group_title, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer closeRows(rows)

	var channels []models.IPTVChannel
	for rows.Next() {
		var ch models.IPTVChannel
		var category, logoURL, countryCode sql.NullString
		var addedBy sql.NullInt64

		err := rows.Scan(
			&ch.ID, &ch.Name, &ch.StreamURL, &category, &ch.GroupTitle,
			&logoURL, &ch.IsLive, &ch.Quality, &countryCode,
			&addedBy, &ch.AddedAt, &ch.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}

		if category.Valid {
			ch.Category = category.String
		}
		if logoURL.Valid {
			ch.LogoURL = logoURL.String
		}
		if countryCode.Valid {
			ch.CountryCode = countryCode.String
		}
		if addedBy.Valid {
			ch.AddedBy = int(addedBy.Int64)
		}

		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return channels, nil
}

// DeactivateChannel soft-deletes a channel.
func (r *IPTVRepository) DeactivateChannel(id int) error {
	result, err := r.db.Exec(`UPDATE iptv_channels SET is_active = FALSE WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate channel: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("channel with id %d not found", id)
	}
	return nil
}

// importPlaylistChannels parses the playlist body and stores each entry as a
// live channel attributed to the playlist creator.
func (r *IPTVRepository) importPlaylistChannels(playlist *models.IPTVPlaylist) error {
	entries, err := iptv.ParseM3U(strings.NewReader(playlist.M3UContent))
	if err != nil {
		return fmt.Errorf("failed to parse playlist: %w", err)
	}

	for _, entry := range entries {
		ch := &models.IPTVChannel{
			Name:        entry.Name,
			StreamURL:   entry.StreamURL,
			GroupTitle:  entry.GroupTitle,
			LogoURL:     entry.LogoURL,
			CountryCode: entry.CountryCode,
			IsLive:      true,
			AddedBy:     playlist.CreatedBy,
		}
		if err := r.AddChannel(ch); err != nil {
			return err
		}
	}

	log.Info().Int("channels", len(entries)).Str("playlist", playlist.Name).Msg("Playlist channels imported")
	return nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close rows")
	}
}
