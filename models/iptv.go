package models

import "time"

// IPTVChannel is a single live stream entry. Channels are managed through the
// repository layer; no HTTP route mutates them.
type IPTVChannel struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	StreamURL   string    `json:"stream_url"`
	Category    string    `json:"category,omitempty"`
	GroupTitle  string    `json:"group_title"`
	LogoURL     string    `json:"logo_url,omitempty"`
	IsLive      bool      `json:"is_live"`
	Quality     string    `json:"quality"`
	CountryCode string    `json:"country_code,omitempty"`
	AddedBy     int       `json:"added_by,omitempty"`
	AddedAt     time.Time `json:"added_at"`
	IsActive    bool      `json:"is_active"`
}

// IPTVPlaylist stores a raw M3U document as imported.
type IPTVPlaylist struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	M3UContent string    `json:"m3u_content,omitempty"`
	CreatedBy  int       `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
