package api

import (
	"net/http"

	"github.com/statushub/statushub/internal/logger"
	"github.com/statushub/statushub/internal/model"
	"github.com/statushub/statushub/internal/service"
)

// UserHandler exposes the session directory and the friend/status protocol.
type UserHandler struct {
	user   *service.User
	logger *logger.Logger
}

func NewUserHandler(user *service.User, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		user:   user,
		logger: logger,
	}
}

func (h *UserHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /SignOn/{userId}", h.signOn)
	mux.HandleFunc("POST /SignOff/{userId}", h.signOff)
	mux.HandleFunc("GET /ReadFriendList/{userId}", h.readFriendList)
	mux.HandleFunc("PUT /AddFriend/{userId}/{country}/{name}", h.addFriend)
	mux.HandleFunc("PUT /UnFriend/{userId}/{country}/{name}", h.unFriend)
	mux.HandleFunc("PUT /UpdateStatus/{userId}/{status}", h.updateStatus)

	for _, prefix := range []string{
		"/SignOn/", "/SignOff/", "/ReadFriendList/",
		"/AddFriend/", "/UnFriend/", "/UpdateStatus/",
	} {
		mux.HandleFunc(prefix, badRequest)
	}
}

func (h *UserHandler) signOn(w http.ResponseWriter, r *http.Request) {
	password, err := decodePassword(r.Body)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.user.SignOn(r.Context(), r.PathValue("userId"), password); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *UserHandler) signOff(w http.ResponseWriter, r *http.Request) {
	if err := h.user.SignOff(r.Context(), r.PathValue("userId")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *UserHandler) readFriendList(w http.ResponseWriter, r *http.Request) {
	list, err := h.user.ReadFriendList(r.Context(), r.PathValue("userId"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{model.PropFriends: list})
}

func (h *UserHandler) addFriend(w http.ResponseWriter, r *http.Request) {
	err := h.user.AddFriend(r.Context(),
		r.PathValue("userId"),
		r.PathValue("country"),
		r.PathValue("name"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *UserHandler) unFriend(w http.ResponseWriter, r *http.Request) {
	err := h.user.UnFriend(r.Context(),
		r.PathValue("userId"),
		r.PathValue("country"),
		r.PathValue("name"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *UserHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	err := h.user.UpdateStatus(r.Context(),
		r.PathValue("userId"),
		r.PathValue("status"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
