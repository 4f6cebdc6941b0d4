package httpapi

import (
	"io"
	"net/http"
)

// HandleImport loads an uploaded file body. A valid snapshot replaces the
// queue; any other content is imported line by line.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to read import body")
		writeError(w, http.StatusRequestEntityTooLarge, "import body too large or unreadable", "INVALID_BODY")
		return
	}

	res := h.store.Import(data)

	h.logger.Info().
		Str("mode", string(res.Mode)).
		Int("added", res.Added).
		Int("total", res.Total).
		Msg("import completed")

	writeJSON(w, http.StatusOK, ImportResponse{ImportResult: res})
}
