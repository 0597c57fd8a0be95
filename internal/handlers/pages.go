package handlers

import (
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
)

var (
	pagesDirOnce sync.Once
	pagesDir     string
)

// PagesDir locates the directory holding the HTML templates, looking in
// the working directory and up to two parents so package tests find it.
func PagesDir() string {
	pagesDirOnce.Do(func() {
		pagesDir = "pages"
		for _, dir := range []string{"pages", "../pages", "../../pages"} {
			if _, err := os.Stat(filepath.Join(dir, "landing.html")); err == nil {
				if abs, err := filepath.Abs(dir); err == nil {
					pagesDir = abs
				}
				return
			}
		}
	})
	return pagesDir
}

// LoadTemplates parses every page and partial. It panics when the pages
// directory is missing, which only happens in a broken deployment.
func LoadTemplates() *template.Template {
	return template.Must(template.New("pages").ParseFS(os.DirFS(PagesDir()), "*.html", "partials/*.html"))
}

// pageData returns the fields every page template expects.
func pageData(page, title string, devMode bool) map[string]interface{} {
	return map[string]interface{}{
		"Page":          page,
		"Title":         title,
		"DevMode":       devMode,
		"PortalVersion": config.Version().Version,
		"SymbolsParam":  "",
	}
}

// render executes a template, logging and answering 500 on failure.
func render(w http.ResponseWriter, logger *common.Logger, templates *template.Template, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		if logger != nil {
			logger.Error().Str("template", name).Err(err).Msg("failed to render page")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// StaticHandler serves pages/static under /static/ without directory
// listings.
func StaticHandler() http.Handler {
	root := http.Dir(filepath.Join(PagesDir(), "static"))
	return http.StripPrefix("/static/", http.FileServer(filesOnly{root}))
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
