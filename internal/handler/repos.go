package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/fakehub/internal/model"
)

// RepoService is the part of the engine the repository endpoints need.
type RepoService interface {
	Create(hub model.Hub, owner, name string, private bool) (model.Repo, error)
	List(hub model.Hub, owner string) ([]model.Repo, error)
}

// CreateRepoRequest is the body of POST /users/{login}/repos.
type CreateRepoRequest struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
}

// ReposHandler serves the repositories owned by users.
type ReposHandler struct {
	repos   RepoService
	hubs    HubResolver
	mainHub string
	logger  *slog.Logger
}

// NewReposHandler creates a new ReposHandler.
func NewReposHandler(repos RepoService, hubs HubResolver, mainHub string, logger *slog.Logger) *ReposHandler {
	return &ReposHandler{
		repos:   repos,
		hubs:    hubs,
		mainHub: mainHub,
		logger:  logger,
	}
}

// HandleList returns a user's repositories.
// GET /users/{login}/repos
func (h *ReposHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	hub, err := resolveHub(r, h.hubs, h.mainHub)
	if err != nil {
		writeError(w, h.logger, "Hub", err)
		return
	}

	repos, err := h.repos.List(hub, chi.URLParam(r, "login"))
	if err != nil {
		writeError(w, h.logger, "Repository", err)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

// HandleCreate creates a repository for a user.
// POST /users/{login}/repos with {"name": "fakehub", "private": false}
func (h *ReposHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	hub, err := resolveHub(r, h.hubs, h.mainHub)
	if err != nil {
		writeError(w, h.logger, "Hub", err)
		return
	}

	var req CreateRepoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid repository body", slog.String("error", err.Error()))
		writeBadRequest(w)
		return
	}

	repo, err := h.repos.Create(hub, chi.URLParam(r, "login"), req.Name, req.Private)
	if err != nil {
		writeError(w, h.logger, "Repository", err)
		return
	}
	writeJSON(w, http.StatusCreated, repo)
}
