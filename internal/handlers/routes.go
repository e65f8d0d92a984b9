package handlers

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sorteo-ig/internal/middleware"
	"sorteo-ig/web"
)

// NewRouter wires every route of the giveaway server.
func NewRouter(h *Handler) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	assets, err := fs.Sub(web.FS, "assets")
	if err != nil {
		return nil, err
	}
	FileServer(r, "/assets", http.FS(assets))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/export.xlsx", h.ExportXLSX)
	r.Get("/api/stats", h.Stats)

	// Page routes see the draw state of the store as of the request.
	r.Group(func(r chi.Router) {
		r.Use(middleware.DrawState(h.giveaway))
		r.Get("/", h.Home)
		r.Post("/register", h.PostRegister)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminCredential)
			r.Post("/draw", h.PostDraw)
			r.Post("/reset", h.PostReset)
		})
	})

	return r, nil
}

// FileServer conveniently sets up a http.FileServer handler at a specific path.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fileServer := http.StripPrefix(pathPrefix, http.FileServer(root))
		fileServer.ServeHTTP(w, r)
	})
}
