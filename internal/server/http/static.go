package httpserver

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// mountStatic serves the built frontend from StaticDir. Unknown paths
// fall back to index.html so client-side routing keeps working.
func (s *Server) mountStatic(r chi.Router) {
	dir := s.config.StaticDir
	fileServer := http.FileServer(http.Dir(dir))

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+req.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, req)
			return
		}
		http.ServeFile(w, req, filepath.Join(dir, "index.html"))
	})
}
