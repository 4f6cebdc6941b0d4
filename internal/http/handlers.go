package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dsjohal14/taskpop/internal/render"
	"github.com/dsjohal14/taskpop/internal/scope/export"
	"github.com/dsjohal14/taskpop/internal/scope/tasks"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxImportBytes caps the size of an uploaded import file
const maxImportBytes = 10 << 20

// Handler contains HTTP handlers for the API
type Handler struct {
	store    *tasks.Store
	exporter *export.Exporter
	logger   zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(store *tasks.Store, exporter *export.Exporter, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		exporter: exporter,
		logger:   logger,
	}
}

// NewRouter mounts every handler on a chi router with the standard middleware
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Routes
	r.Get("/health", h.HandleHealth)
	r.Get("/tasks", h.HandleList)
	r.Post("/tasks", h.HandleAdd)
	r.Post("/pop", h.HandlePop)
	r.Post("/import", h.HandleImport)
	r.Get("/export", h.HandleExportDownload)
	r.Post("/export", h.HandleExportFile)

	return r
}

// Helper functions used across all handlers

func toDTO(t tasks.Task) *TaskDTO {
	return &TaskDTO{
		ID:          t.ID,
		Description: t.Description,
		Priority:    t.Priority,
		Display:     render.FormatTask(t),
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
