// Package config reads startup configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds everything read once at startup.
type Config struct {
	MediaRoot     string
	DatabasePath  string
	Port          int
	SessionSecret string

	CoversDir     string
	ThumbnailsDir string

	// MaxUploadBytes caps a single multipart upload request.
	MaxUploadBytes int64

	// PlaylistFile, when set, points at an M3U file imported into the IPTV
	// tables on startup.
	PlaylistFile string
}

// Load reads the optional .env file and builds the configuration.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	return Config{
		MediaRoot:      GetString("MEDIA_ROOT", "media"),
		DatabasePath:   GetString("DATABASE_PATH", "library.db"),
		Port:           GetInt("PORT", 5005),
		SessionSecret:  GetString("SESSION_SECRET", "change-me"),
		CoversDir:      filepath.Join("static", "covers"),
		ThumbnailsDir:  filepath.Join("static", "thumbnails"),
		MaxUploadBytes: int64(GetInt("MAX_UPLOAD_MB", 500)) << 20,
		PlaylistFile:   GetString("IPTV_PLAYLIST_FILE", ""),
	}
}

// GetString returns the environment variable value or a default if not set
func GetString(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

// GetInt returns the environment variable value as int or a default if not set
func GetInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Str("value", valueStr).Msg("Invalid integer in environment, using default")
		return defaultValue
	}
	return value
}
