package api

import (
	"encoding/json"
	"net/http"

	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
	"github.com/statushub/statushub/internal/service"
)

// PushHandler exposes the fan-out operation.
type PushHandler struct {
	push   *service.Push
	logger *logger.Logger
}

func NewPushHandler(push *service.Push, logger *logger.Logger) *PushHandler {
	return &PushHandler{
		push:   push,
		logger: logger,
	}
}

func (h *PushHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /PushStatus/{partition}/{row}/{status}", h.pushStatus)
	mux.HandleFunc("/PushStatus/", badRequest)
}

type pushStatusRequest struct {
	Friends string `json:"Friends"`
}

// pushStatus replies 200 once the fan-out pass completes, regardless of the
// per-friend tally: partial delivery is accepted behavior.
func (h *PushHandler) pushStatus(w http.ResponseWriter, r *http.Request) {
	var req pushStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, h.logger, model.ErrBadRequest)
		return
	}

	h.push.PushStatus(r.Context(), r.PathValue("status"), req.Friends)
	w.WriteHeader(http.StatusOK)
}
