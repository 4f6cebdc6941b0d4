package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dsjohal14/taskpop/internal/render"
)

// HandleList returns the queue in priority order and the current task
func (h *Handler) HandleList(w http.ResponseWriter, _ *http.Request) {
	queue := h.store.Tasks()

	resp := ListResponse{
		Tasks: make([]TaskDTO, len(queue)),
		Count: len(queue),
	}
	for i, t := range queue {
		resp.Tasks[i] = *toDTO(t)
	}
	if current, ok := h.store.Current(); ok {
		resp.Current = toDTO(current)
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleAdd queues a task from a manual entry
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid add request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	task, ok := h.store.AddTask(req.Description)
	resp := AddTaskResponse{Added: ok, Count: h.store.Len()}
	if ok {
		resp.Task = toDTO(task)
		h.logger.Info().
			Str("task_id", task.ID).
			Int("priority", task.Priority).
			Msg("task added")
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandlePop removes the highest-priority task and returns it
func (h *Handler) HandlePop(w http.ResponseWriter, _ *http.Request) {
	task, ok := h.store.PopNext()
	resp := PopResponse{
		Popped:    ok,
		PopCount:  h.store.PopCount(),
		Remaining: h.store.Len(),
	}
	if ok {
		resp.Task = toDTO(task)
		resp.NowDoing = render.FormatCurrent(task)
		h.logger.Info().
			Str("task_id", task.ID).
			Int("pop_count", resp.PopCount).
			Msg("task popped")
	}

	writeJSON(w, http.StatusOK, resp)
}
