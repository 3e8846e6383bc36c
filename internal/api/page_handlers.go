package api

import (
	"bytes"
	"net/http"
)

// getIndex renders the landing page
func (h *Handlers) getIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	data := struct{ Title string }{Title: siteTitle}
	if err := h.pages.ExecuteTemplate(&buf, "index.html", data); err != nil {
		h.respondError(w, r, "Failed to render page", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// staticAssets serves the embedded JS and CSS with a one day cache lifetime.
func (h *Handlers) staticAssets() http.Handler {
	files := http.StripPrefix("/static/", http.FileServer(http.FS(h.assets)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
