package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dsjohal14/taskpop/internal/scope/export"
)

// HandleExportDownload streams the snapshot as a dated JSON attachment
func (h *Handler) HandleExportDownload(w http.ResponseWriter, _ *http.Request) {
	snap := h.store.ExportSnapshot()
	data, err := export.Encode(snap)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode snapshot")
		writeError(w, http.StatusInternalServerError, "failed to encode snapshot", "EXPORT_ERROR")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleExportFile writes a manual export into the export directory
func (h *Handler) HandleExportFile(w http.ResponseWriter, _ *http.Request) {
	snap := h.store.ExportSnapshot()
	path, err := h.exporter.Export(snap)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to write export")
		writeError(w, http.StatusInternalServerError, "failed to write export", "EXPORT_ERROR")
		return
	}

	h.logger.Info().Str("path", path).Int("count", len(snap.Tasks)).Msg("export written")

	writeJSON(w, http.StatusOK, ExportFileResponse{Path: path, Count: len(snap.Tasks)})
}
