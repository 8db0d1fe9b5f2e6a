package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"videolib/auth"
	"videolib/config"
	"videolib/models"
	"videolib/repository"
	"videolib/scanner"
	"videolib/ui"
)

// App holds the application's dependencies; handlers hang off it.
type App struct {
	cfg      config.Config
	users    *repository.UserRepository
	metadata *repository.MetadataRepository
	iptv     *repository.IPTVRepository
	scanner  *scanner.Scanner
	sessions *auth.Sessions
	renderer *ui.Renderer
}

type jsonRequest struct {
	VideoPath string `json:"video_path"`
	CoverURL  string `json:"cover_url"`
}

type jsonResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// currentUser resolves the session identity on routes without the login
// guard; guarded routes reuse the user attached by the middleware.
func (app *App) currentUser(r *http.Request) *models.User {
	if user := auth.CurrentUser(r); user != nil {
		return user
	}
	userID, ok := app.sessions.UserID(r)
	if !ok {
		return nil
	}
	user, err := app.users.GetActiveByID(userID)
	if err != nil {
		return nil
	}
	return user
}

// pageData builds the common template data, consuming any pending flash.
func (app *App) pageData(w http.ResponseWriter, r *http.Request) ui.PageData {
	data := ui.PageData{CurrentUser: app.currentUser(r)}
	if flash := app.sessions.PopFlash(w, r); flash != nil {
		data.FlashMessage = flash.Message
		data.FlashCategory = flash.Category
	}
	return data
}

func (app *App) indexHandler(w http.ResponseWriter, r *http.Request) {
	data := app.pageData(w, r)
	data.VideoStructure = app.scanner.Scan()
	app.renderer.Render(w, "videos.html", data)
}

func (app *App) loginHandler(w http.ResponseWriter, r *http.Request) {
	if app.currentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if r.Method == http.MethodPost {
		username := r.FormValue("username")
		password := r.FormValue("password")
		remember := r.FormValue("remember") != ""

		user, err := app.users.FindActiveByUsername(username)
		if err == nil && auth.CheckPassword(user.PasswordHash, password) {
			if err := app.sessions.SetUser(w, user.ID, remember); err != nil {
				log.Error().Err(err).Msg("Failed to set session cookie")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			app.sessions.SetFlash(w, "Login successful!", "success")
			http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusFound)
			return
		}

		// Generic message; never reveal which field was wrong.
		data := app.pageData(w, r)
		data.FlashMessage = "Invalid username or password"
		data.FlashCategory = "error"
		data.Next = r.URL.Query().Get("next")
		app.renderer.Render(w, "login.html", data)
		return
	}

	data := app.pageData(w, r)
	data.Next = r.URL.Query().Get("next")
	app.renderer.Render(w, "login.html", data)
}

func (app *App) logoutHandler(w http.ResponseWriter, r *http.Request) {
	app.sessions.Clear(w)
	app.sessions.SetFlash(w, "You have been logged out successfully.", "success")
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (app *App) registerHandler(w http.ResponseWriter, r *http.Request) {
	if app.currentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if r.Method == http.MethodPost {
		username := r.FormValue("username")
		password := r.FormValue("password")
		confirmPassword := r.FormValue("confirm_password")
		email := strings.TrimSpace(r.FormValue("email"))

		if reason := validateRegistration(app.users, username, password, confirmPassword); reason != "" {
			app.renderRegisterError(w, r, reason)
			return
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Error().Err(err).Msg("Failed to hash password")
			app.renderRegisterError(w, r, "Error creating user. Please try again.")
			return
		}

		user := &models.User{Username: username, PasswordHash: hash, Email: email}
		if err := app.users.Create(user); err != nil {
			log.Error().Err(err).Msg("Failed to create user")
			app.renderRegisterError(w, r, "Error creating user. Please try again.")
			return
		}

		app.sessions.SetFlash(w, "Registration successful! Please log in.", "success")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	app.renderer.Render(w, "register.html", app.pageData(w, r))
}

// validateRegistration returns a user-facing reason, or "" when valid.
func validateRegistration(users *repository.UserRepository, username, password, confirmPassword string) string {
	if username == "" || password == "" {
		return "Username and password are required"
	}
	if password != confirmPassword {
		return "Passwords do not match"
	}
	if len(password) < 6 {
		return "Password must be at least 6 characters long"
	}
	if len(username) < 3 || len(username) > 20 {
		return "Username must be between 3 and 20 characters"
	}
	exists, err := users.UsernameExists(username)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check username")
		return "Error creating user. Please try again."
	}
	if exists {
		return "Username already exists"
	}
	return ""
}

func (app *App) renderRegisterError(w http.ResponseWriter, r *http.Request, reason string) {
	data := app.pageData(w, r)
	data.FlashMessage = reason
	data.FlashCategory = "error"
	app.renderer.Render(w, "register.html", data)
}

func (app *App) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		app.handleUploadPost(w, r)
		return
	}

	data := app.pageData(w, r)
	data.Folders = app.scanner.ListFolders()
	app.renderer.Render(w, "upload.html", data)
}

func (app *App) handleUploadPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		app.flashAndRedirect(w, r, "Upload failed: file too large or malformed request.", "error", "/upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		app.flashAndRedirect(w, r, "No file selected", "error", "/upload")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close uploaded file")
		}
	}()

	filename := sanitizeFilename(header.Filename)
	if filename == "" || !scanner.IsVideoFile(filename) {
		app.flashAndRedirect(w, r, "Invalid file type. Please upload a video file.", "error", "/upload")
		return
	}

	folder := r.FormValue("folder")
	if newFolder := strings.TrimSpace(r.FormValue("new_folder")); newFolder != "" {
		folder = newFolder
	}

	relPath := filename
	if folder != "" {
		folder = sanitizeFilename(folder)
		if folder == "" {
			app.flashAndRedirect(w, r, "Invalid folder name.", "error", "/upload")
			return
		}
		relPath = folder + "/" + filename
	}

	dest, err := resolveUnderRoot(app.cfg.MediaRoot, relPath)
	if err != nil {
		app.flashAndRedirect(w, r, "Invalid upload destination.", "error", "/upload")
		return
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		log.Error().Err(err).Str("dest", dest).Msg("Failed to create upload folder")
		app.flashAndRedirect(w, r, "Failed to save file.", "error", "/upload")
		return
	}

	if err := saveUpload(dest, file); err != nil {
		log.Error().Err(err).Str("dest", dest).Msg("Failed to save upload")
		app.flashAndRedirect(w, r, "Failed to save file.", "error", "/upload")
		return
	}

	user := auth.CurrentUser(r)
	fields := map[string]any{
		"upload_date": time.Now().Format("2006-01-02"),
		"views":       0,
		"duration":    models.DefaultDuration,
	}
	if user != nil {
		fields["uploaded_by"] = user.ID
	}
	if err := app.metadata.Upsert(relPath, fields); err != nil {
		log.Error().Err(err).Str("video_path", relPath).Msg("Failed to record upload metadata")
	}

	app.flashAndRedirect(w, r, "Video uploaded successfully!", "success", "/")
}

func (app *App) manageHandler(w http.ResponseWriter, r *http.Request) {
	data := app.pageData(w, r)
	data.VideoStructure = app.scanner.Scan()
	app.renderer.Render(w, "manage.html", data)
}

func (app *App) analyticsHandler(w http.ResponseWriter, r *http.Request) {
	data := app.pageData(w, r)
	data.VideoStructure = app.scanner.Scan()

	for _, entry := range data.VideoStructure {
		if entry.Type == models.EntryFolder {
			for _, video := range entry.Contents {
				data.TotalViews += video.Views
				data.TotalVideos++
			}
			continue
		}
		data.TotalViews += entry.Views
		data.TotalVideos++
	}

	app.renderer.Render(w, "analytics.html", data)
}

func (app *App) updateCoverHandler(w http.ResponseWriter, r *http.Request) {
	var req jsonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoPath == "" || req.CoverURL == "" {
		writeJSON(w, jsonResponse{Success: false})
		return
	}

	if err := app.metadata.Upsert(req.VideoPath, map[string]any{"cover_image": req.CoverURL}); err != nil {
		log.Error().Err(err).Str("video_path", req.VideoPath).Msg("Failed to update cover")
		writeJSON(w, jsonResponse{Success: false})
		return
	}
	writeJSON(w, jsonResponse{Success: true})
}

func (app *App) incrementViewsHandler(w http.ResponseWriter, r *http.Request) {
	var req jsonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoPath == "" {
		writeJSON(w, jsonResponse{Success: false})
		return
	}

	ok, err := app.metadata.IncrementViews(req.VideoPath)
	if err != nil {
		log.Error().Err(err).Str("video_path", req.VideoPath).Msg("Failed to increment views")
		writeJSON(w, jsonResponse{Success: false})
		return
	}
	writeJSON(w, jsonResponse{Success: ok})
}

func (app *App) deleteVideoHandler(w http.ResponseWriter, r *http.Request) {
	var req jsonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoPath == "" {
		writeJSON(w, jsonResponse{Success: false})
		return
	}

	fullPath, err := resolveUnderRoot(app.cfg.MediaRoot, req.VideoPath)
	if err != nil {
		writeJSON(w, jsonResponse{Success: false, Error: "invalid video path"})
		return
	}

	if _, err := os.Stat(fullPath); err != nil {
		writeJSON(w, jsonResponse{Success: false, Error: "file not found"})
		return
	}

	if err := os.Remove(fullPath); err != nil {
		log.Error().Err(err).Str("path", fullPath).Msg("Failed to delete video file")
		writeJSON(w, jsonResponse{Success: false, Error: err.Error()})
		return
	}

	// File and row removal are not transactional; a failure here leaves an
	// orphaned row that the next delete attempt cleans up.
	if err := app.metadata.Delete(req.VideoPath); err != nil {
		log.Error().Err(err).Str("video_path", req.VideoPath).Msg("Failed to delete metadata row")
		writeJSON(w, jsonResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, jsonResponse{Success: true})
}

func (app *App) serveVideoHandler(w http.ResponseWriter, r *http.Request) {
	relPath := mux.Vars(r)["path"]

	fullPath, err := resolveUnderRoot(app.cfg.MediaRoot, relPath)
	if err != nil {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	// ServeFile handles range requests for seeking.
	http.ServeFile(w, r, fullPath)
}

func (app *App) serveCoverHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.Error(w, "Invalid cover name", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, filepath.Join(app.cfg.CoversDir, name))
}

func (app *App) flashAndRedirect(w http.ResponseWriter, r *http.Request, message, category, target string) {
	app.sessions.SetFlash(w, message, category)
	http.Redirect(w, r, target, http.StatusFound)
}

func writeJSON(w http.ResponseWriter, resp jsonResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warn().Err(err).Msg("Failed to encode JSON response")
	}
}

// errPathEscapesRoot rejects requests whose resolved path leaves the media root.
var errPathEscapesRoot = errors.New("path escapes media root")

// resolveUnderRoot joins a client-supplied relative path to the media root
// and rejects any result that escapes it.
func resolveUnderRoot(root, relPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	full, err := filepath.Abs(filepath.Join(absRoot, filepath.FromSlash(relPath)))
	if err != nil {
		return "", err
	}

	if full != absRoot && !strings.HasPrefix(full, absRoot+string(os.PathSeparator)) {
		return "", errPathEscapesRoot
	}
	if full == absRoot {
		return "", errPathEscapesRoot
	}
	return full, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// sanitizeFilename reduces a client-supplied filename to a single safe path
// element. Returns "" when nothing usable remains.
func sanitizeFilename(name string) string {
	// Drop directory components from either separator convention.
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// safeNext constrains post-login redirects to local paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

func saveUpload(dest string, src io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// requestLogger logs each request with a correlation id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info().
			Str("request_id", uuid.NewString()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
