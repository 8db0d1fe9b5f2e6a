package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"videolib/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData carries everything a page template can show. Unused fields stay
// zero for pages that do not need them.
type PageData struct {
	CurrentUser   *models.User
	FlashMessage  string
	FlashCategory string

	VideoStructure []models.ScanEntry
	Folders        []string
	TotalViews     int
	TotalVideos    int
	Next           string
}

// Renderer executes the embedded page templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	templates, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: templates}, nil
}

// Render writes the named page. The template is executed into a buffer first
// so a mid-render failure produces a clean 500 instead of a half page.
func (rd *Renderer) Render(w http.ResponseWriter, name string, data PageData) {
	var buf bytes.Buffer
	if err := rd.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
