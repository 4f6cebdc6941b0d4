package httpapi

import "net/http"

// HandleHealth returns API health status and queue size
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		TaskCount: h.store.Len(),
		PopCount:  h.store.PopCount(),
	}

	h.logger.Debug().Int("task_count", resp.TaskCount).Msg("health check")

	writeJSON(w, http.StatusOK, resp)
}
