package http

import (
	"embed"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed web
var webFS embed.FS

// MountUI serves the embedded single-page chat UI at the root path.
func MountUI(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		data, err := webFS.ReadFile("web/index.html")
		if err != nil {
			http.Error(w, "ui not available", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	})
}
