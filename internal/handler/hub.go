package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/fakehub/internal/model"
	"github.com/sakif/fakehub/internal/service"
)

// HubParam is the chi URL parameter that selects a hub by name or ID.
// Routes without it address the main hub.
const HubParam = "hub"

// HubResolver finds a hub by name or ID.
type HubResolver interface {
	LookupHub(nameOrID string) (model.Hub, error)
}

// resolveHub returns the hub a request addresses.
func resolveHub(r *http.Request, hubs HubResolver, mainHub string) (model.Hub, error) {
	name := chi.URLParam(r, HubParam)
	if name == "" {
		name = mainHub
	}
	return hubs.LookupHub(name)
}

// HubLister lists hubs with their coordinates.
type HubLister interface {
	Hubs() ([]service.HubSummary, error)
}

// HubsHandler serves the hub directory.
type HubsHandler struct {
	hubs   HubLister
	logger *slog.Logger
}

// NewHubsHandler creates a new HubsHandler.
func NewHubsHandler(hubs HubLister, logger *slog.Logger) *HubsHandler {
	return &HubsHandler{
		hubs:   hubs,
		logger: logger,
	}
}

// HandleList returns every hub.
// GET /hubs
func (h *HubsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	hubs, err := h.hubs.Hubs()
	if err != nil {
		writeError(w, h.logger, "Hub", err)
		return
	}
	writeJSON(w, http.StatusOK, hubs)
}
