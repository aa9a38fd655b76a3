package api

import (
	"net/http"
	"time"

	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
	"github.com/statushub/statushub/internal/service"
)

// AuthHandler exposes the token-issuing surface. All three operations share
// the credential body contract: exactly one Password property.
type AuthHandler struct {
	auth   *service.Auth
	logger *logger.Logger
}

func NewAuthHandler(auth *service.Auth, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /GetReadToken/{userId}", h.token(model.CapabilityRead))
	mux.HandleFunc("GET /GetUpdateToken/{userId}", h.token(model.CapabilityReadUpdate))
	mux.HandleFunc("GET /GetUpdateData/{userId}", h.updateData)

	for _, prefix := range []string{"/GetReadToken/", "/GetUpdateToken/", "/GetUpdateData/"} {
		mux.HandleFunc(prefix, badRequest)
	}
}

func (h *AuthHandler) token(capability model.Capability) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		password, err := decodePassword(r.Body)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}

		issued, err := h.auth.IssueToken(r.Context(), r.PathValue("userId"), password, capability)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"token": issued.Token})
	}
}

// updateData serves sign-on: the update token together with the coordinates
// of the data entity it is bound to.
func (h *AuthHandler) updateData(w http.ResponseWriter, r *http.Request) {
	password, err := decodePassword(r.Body)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	issued, err := h.auth.IssueToken(r.Context(), r.PathValue("userId"), password, model.CapabilityReadUpdate)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":         issued.Token,
		"DataPartition": issued.Partition,
		"DataRow":       issued.Row,
		"TokenExpiry":   issued.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
