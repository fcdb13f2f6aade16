package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/fakehub/internal/model"
)

// UserService is the part of the engine the user endpoints need.
type UserService interface {
	HubResolver
	Register(hub model.Hub, login string) (*model.User, error)
	GetUser(hub model.Hub, login string) (*model.User, error)
	ListUsers(hub model.Hub) ([]*model.User, error)
}

// RegisterRequest is the body of POST /users. "username" is accepted as an
// alias of "login".
type RegisterRequest struct {
	Login    string `json:"login"`
	Username string `json:"username,omitempty"`
}

// UsersHandler serves the user endpoints of one hub.
type UsersHandler struct {
	users   UserService
	mainHub string
	logger  *slog.Logger
}

// NewUsersHandler creates a new UsersHandler. mainHub is the hub addressed by
// routes that carry no hub parameter.
func NewUsersHandler(users UserService, mainHub string, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{
		users:   users,
		mainHub: mainHub,
		logger:  logger,
	}
}

// HandleList returns all users of the hub ordered by id.
// GET /users
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	hub, err := resolveHub(r, h.users, h.mainHub)
	if err != nil {
		writeError(w, h.logger, "Hub", err)
		return
	}

	users, err := h.users.ListUsers(hub)
	if err != nil {
		writeError(w, h.logger, "User", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGet returns one user.
// GET /users/{login}
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	hub, err := resolveHub(r, h.users, h.mainHub)
	if err != nil {
		writeError(w, h.logger, "Hub", err)
		return
	}

	user, err := h.users.GetUser(hub, chi.URLParam(r, "login"))
	if err != nil {
		writeError(w, h.logger, "User", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleRegister registers a new user.
// POST /users with {"login": "jeff"}
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	hub, err := resolveHub(r, h.users, h.mainHub)
	if err != nil {
		writeError(w, h.logger, "Hub", err)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid registration body", slog.String("error", err.Error()))
		writeBadRequest(w)
		return
	}
	login := req.Login
	if login == "" {
		login = req.Username
	}

	user, err := h.users.Register(hub, login)
	if err != nil {
		writeError(w, h.logger, "User", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
