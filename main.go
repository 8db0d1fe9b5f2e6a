// Package main wires the video library web application together.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"videolib/auth"
	"videolib/config"
	"videolib/database"
	"videolib/models"
	"videolib/repository"
	"videolib/scanner"
	"videolib/ui"
)

func main() {
	initLogging()

	cfg := config.Load()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize schema")
	}

	userRepo := repository.NewUserRepository(db)
	metadataRepo := repository.NewMetadataRepository(db)
	iptvRepo := repository.NewIPTVRepository(db)

	if err := seedAdmin(userRepo); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin account")
	}

	ensureDirs(cfg.CoversDir, cfg.ThumbnailsDir, filepath.Join("static", "images"))

	if cfg.PlaylistFile != "" {
		importPlaylist(iptvRepo, cfg.PlaylistFile)
	}

	renderer, err := ui.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load templates")
	}

	app := &App{
		cfg:      cfg,
		users:    userRepo,
		metadata: metadataRepo,
		iptv:     iptvRepo,
		scanner:  scanner.New(cfg.MediaRoot, metadataRepo),
		sessions: auth.NewSessions(cfg.SessionSecret),
		renderer: renderer,
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Str("media_root", cfg.MediaRoot).Msg("Server starting")

	server := &http.Server{
		Addr:         addr,
		Handler:      globalRateLimits(app.sessions, app.routes()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Fatal().Err(server.ListenAndServe()).Msg("Server stopped")
}

// routes builds the full route table.
func (app *App) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogger)

	limited := tooManyRequestsHandler(app.sessions)
	loginLimit := httprate.Limit(5, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP), httprate.WithLimitHandler(limited))
	registerLimit := httprate.Limit(3, time.Hour,
		httprate.WithKeyFuncs(httprate.KeyByIP), httprate.WithLimitHandler(limited))

	r.HandleFunc("/", app.indexHandler).Methods("GET")
	r.Handle("/login", loginLimit(http.HandlerFunc(app.loginHandler))).Methods("GET", "POST")
	r.Handle("/logout", app.requireLogin(app.logoutHandler)).Methods("GET")
	r.Handle("/register", registerLimit(http.HandlerFunc(app.registerHandler))).Methods("GET", "POST")
	r.Handle("/upload", app.requireLogin(app.uploadHandler)).Methods("GET", "POST")
	r.Handle("/manage", app.requireLogin(app.manageHandler)).Methods("GET")
	r.Handle("/analytics", app.requireLogin(app.analyticsHandler)).Methods("GET")

	r.Handle("/update_cover", app.requireLogin(app.updateCoverHandler)).Methods("POST")
	r.HandleFunc("/increment_views", app.incrementViewsHandler).Methods("POST")
	r.Handle("/delete_video", app.requireLogin(app.deleteVideoHandler)).Methods("POST")

	r.HandleFunc("/videos/{path:.+}", app.serveVideoHandler).Methods("GET")
	r.HandleFunc("/static/covers/{name}", app.serveCoverHandler).Methods("GET")
	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir("static")))).Methods("GET")

	return r
}

func (app *App) requireLogin(h http.HandlerFunc) http.Handler {
	return auth.RequireLogin(app.sessions, app.users, h)
}

// globalRateLimits applies the per-address daily and hourly caps in front of
// every route.
func globalRateLimits(sessions *auth.Sessions, next http.Handler) http.Handler {
	limited := tooManyRequestsHandler(sessions)
	hourly := httprate.Limit(50, time.Hour,
		httprate.WithKeyFuncs(httprate.KeyByIP), httprate.WithLimitHandler(limited))
	daily := httprate.Limit(200, 24*time.Hour,
		httprate.WithKeyFuncs(httprate.KeyByIP), httprate.WithLimitHandler(limited))
	return daily(hourly(next))
}

// tooManyRequestsHandler redirects a rate-limited client to login with a
// notice instead of failing the connection.
func tooManyRequestsHandler(sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.SetFlash(w, "Too many requests. Please try again later.", "error")
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func initLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString("LOG_LEVEL", "info")))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// seedAdmin creates the default admin account on first run.
func seedAdmin(users *repository.UserRepository) error {
	exists, err := users.UsernameExists("admin")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword("admin123")
	if err != nil {
		return err
	}
	admin := &models.User{Username: "admin", PasswordHash: hash}
	if err := users.Create(admin); err != nil {
		return err
	}

	log.Info().Msg("Default admin user created: admin/admin123")
	return nil
}

func ensureDirs(dirs ...string) {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Failed to create directory")
		}
	}
}

// importPlaylist loads an M3U file into the IPTV tables once per file name.
func importPlaylist(repo *repository.IPTVRepository, path string) {
	name := filepath.Base(path)
	exists, err := repo.PlaylistExists(name)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to check existing playlists")
		return
	}
	if exists {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to read playlist file")
		return
	}

	if _, err := repo.CreatePlaylist(name, string(content), 1); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to import playlist")
	}
}
