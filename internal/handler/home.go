package handler

import (
	"log/slog"
	"net/http"
	"strconv"
)

// MetaRoot is the platform's root document: URL templates for the main API
// entry points. Field order matches the platform's response.
type MetaRoot struct {
	CurrentUserURL                   string `json:"current_user_url"`
	CurrentUserAuthorizationsHTMLURL string `json:"current_user_authorizations_html_url"`
	AuthorizationsURL                string `json:"authorizations_url"`
	CodeSearchURL                    string `json:"code_search_url"`
	CommitSearchURL                  string `json:"commit_search_url"`
	EmailsURL                        string `json:"emails_url"`
	EmojisURL                        string `json:"emojis_url"`
	EventsURL                        string `json:"events_url"`
	FeedsURL                         string `json:"feeds_url"`
	FollowersURL                     string `json:"followers_url"`
	FollowingURL                     string `json:"following_url"`
	GistsURL                         string `json:"gists_url"`
	IssueSearchURL                   string `json:"issue_search_url"`
	IssuesURL                        string `json:"issues_url"`
	KeysURL                          string `json:"keys_url"`
	LabelSearchURL                   string `json:"label_search_url"`
	NotificationsURL                 string `json:"notifications_url"`
	OrganizationURL                  string `json:"organization_url"`
	OrganizationRepositoriesURL      string `json:"organization_repositories_url"`
	OrganizationTeamsURL             string `json:"organization_teams_url"`
	PublicGistsURL                   string `json:"public_gists_url"`
	RateLimitURL                     string `json:"rate_limit_url"`
	RepositoryURL                    string `json:"repository_url"`
	RepositorySearchURL              string `json:"repository_search_url"`
	CurrentUserRepositoriesURL       string `json:"current_user_repositories_url"`
	StarredURL                       string `json:"starred_url"`
	StarredGistsURL                  string `json:"starred_gists_url"`
	UserURL                          string `json:"user_url"`
	UserOrganizationsURL             string `json:"user_organizations_url"`
	UserRepositoriesURL              string `json:"user_repositories_url"`
	UserSearchURL                    string `json:"user_search_url"`
}

// HomeHandler serves the root document and the health probe.
type HomeHandler struct {
	hubs    HubResolver
	mainHub string
	logger  *slog.Logger
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(hubs HubResolver, mainHub string, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		hubs:    hubs,
		mainHub: mainHub,
		logger:  logger,
	}
}

// HandleRoot returns the root document for the hub.
// GET /
func (h *HomeHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	hub, err := resolveHub(r, h.hubs, h.mainHub)
	if err != nil {
		writeError(w, h.logger, "Hub", err)
		return
	}

	c := hub.Cursor()
	search := "{&page,per_page,sort,order}"
	writeJSON(w, http.StatusOK, MetaRoot{
		CurrentUserURL:                   c.Join("user"),
		CurrentUserAuthorizationsHTMLURL: c.Join("settings/connections/applications{/client_id}"),
		AuthorizationsURL:                c.Join("authorizations"),
		CodeSearchURL:                    c.Join("search/code?q={query}" + search),
		CommitSearchURL:                  c.Join("search/commits?q={query}" + search),
		EmailsURL:                        c.Join("user/emails"),
		EmojisURL:                        c.Join("emojis"),
		EventsURL:                        c.Join("events"),
		FeedsURL:                         c.Join("feeds"),
		FollowersURL:                     c.Join("user/followers"),
		FollowingURL:                     c.Join("user/following{/target}"),
		GistsURL:                         c.Join("gists{/gist_id}"),
		IssueSearchURL:                   c.Join("search/issues?q={query}" + search),
		IssuesURL:                        c.Join("issues"),
		KeysURL:                          c.Join("user/keys"),
		LabelSearchURL:                   c.Join("search/labels?q={query}&repository_id={repository_id}{&page,per_page}"),
		NotificationsURL:                 c.Join("notifications"),
		OrganizationURL:                  c.Join("orgs/{org}"),
		OrganizationRepositoriesURL:      c.Join("orgs/{org}/repos{?type,page,per_page,sort}"),
		OrganizationTeamsURL:             c.Join("orgs/{org}/teams"),
		PublicGistsURL:                   c.Join("gists/public"),
		RateLimitURL:                     c.Join("rate_limit"),
		RepositoryURL:                    c.Join("repos/{owner}/{repo}"),
		RepositorySearchURL:              c.Join("search/repositories?q={query}" + search),
		CurrentUserRepositoriesURL:       c.Join("user/repos{?type,page,per_page,sort}"),
		StarredURL:                       c.Join("user/starred{/owner}{/repo}"),
		StarredGistsURL:                  c.Join("gists/starred"),
		UserURL:                          c.Join("users/{user}"),
		UserOrganizationsURL:             c.Join("user/orgs"),
		UserRepositoriesURL:              c.Join("users/{user}/repos{?type,page,per_page,sort}"),
		UserSearchURL:                    c.Join("search/users?q={query}" + search),
	})
}

// HandleHealth reports that the server is accepting requests.
// GET /healthz
func (h *HomeHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// HandleNotFound answers unknown routes with the platform's 404 document.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Message:          "Not Found",
		DocumentationURL: DocumentationURL,
		Status:           strconv.Itoa(http.StatusNotFound),
	})
}
