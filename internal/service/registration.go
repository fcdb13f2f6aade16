// Package service contains the emulation engine: user registration, hub
// lookup, repository bookkeeping and startup seeding.
//
// LAYERING:
//
//	Handler (HTTP)   → decodes requests, maps errors to status codes
//	Service (engine) → validates, enriches, enforces uniqueness
//	Repository       → owns the hub/user graph and its locks
//
// Services depend on repository.Store (an interface), never on the memory
// package, so tests can hand them any store.
package service

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/sakif/fakehub/internal/apperror"
	"github.com/sakif/fakehub/internal/cursor"
	"github.com/sakif/fakehub/internal/model"
	"github.com/sakif/fakehub/internal/repository"
)

// MaxID is the exclusive upper bound of synthetic user ids.
const MaxID = 100_000_000

// UserKeys lists the attributes a registered user carries besides "login",
// in the order they are rendered.
var UserKeys = []string{
	"node_id",
	"id",
	"avatar_url",
	"gravatar_id",
	"url",
	"html_url",
	"followers_url",
	"following_url",
	"gists_url",
	"starred_url",
	"subscriptions_url",
	"organizations_url",
	"repos_url",
	"events_url",
	"received_events_url",
	"type",
	"site_admin",
	"name",
	"company",
	"blog",
	"location",
	"email",
	"hireable",
	"bio",
	"public_repos",
	"public_gists",
	"followers",
	"following",
	"created_at",
	"updated_at",
}

// State is a step of the registration protocol.
type State int

const (
	Candidate State = iota // login received, nothing checked yet
	Checked                // login is free in the hub
	Enriched               // attributes synthesized
	Stored                 // inserted into the hub
	Rejected               // login was taken
)

func (s State) String() string {
	switch s {
	case Candidate:
		return "candidate"
	case Checked:
		return "checked"
	case Enriched:
		return "enriched"
	case Stored:
		return "stored"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IDSource produces pseudo-random ints in [0, n). Implementations need not be
// safe for concurrent use; the Registrar serializes calls.
type IDSource interface {
	IntN(n int) int
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithIDSource replaces the default time-seeded PCG generator.
func WithIDSource(src IDSource) Option {
	return func(r *Registrar) { r.ids = src }
}

// WithSeed seeds the default generator, making ids reproducible.
func WithSeed(seed uint64) Option {
	return func(r *Registrar) { r.ids = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithClock replaces time.Now as the source of created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *Registrar) { r.now = now }
}

// Registrar turns logins into fully shaped users.
//
// Uniqueness is checked and the user stored inside one store.Update call, so
// two concurrent registrations of the same login in the same hub produce
// exactly one user and one AlreadyExists error.
type Registrar struct {
	store  repository.Store
	logger *slog.Logger

	idMu sync.Mutex
	ids  IDSource
	now  func() time.Time
}

// NewRegistrar creates a Registrar backed by store.
func NewRegistrar(store repository.Store, logger *slog.Logger, opts ...Option) *Registrar {
	seed := uint64(time.Now().UnixNano())
	r := &Registrar{
		store:  store,
		logger: logger,
		ids:    rand.New(rand.NewPCG(seed, seed>>1)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register creates login in hub and returns a copy of the stored user.
//
// Errors:
//   - apperror.ErrValidation when login is not a usable login
//   - apperror.ErrNotFound when hub is not in the store
//   - apperror.ErrConflict when login is already registered in hub
func (r *Registrar) Register(hub model.Hub, login string) (*model.User, error) {
	if err := ValidateLogin(login); err != nil {
		return nil, err
	}

	var stored *model.User
	state := Candidate
	err := r.store.Update(hub.ID, func(tx repository.UserTx) error {
		if _, taken := tx.User(login); taken {
			state = Rejected
			return apperror.AlreadyExists("login", login)
		}
		state = Checked

		user := model.NewUser(login)
		r.enrich(hub, user)
		state = Enriched

		if err := tx.Insert(user); err != nil {
			return err
		}
		state = Stored
		stored = user.Clone()
		return nil
	})
	if err != nil {
		if state == Rejected {
			r.logger.Warn("registration rejected",
				slog.String("hub", hub.Name),
				slog.String("login", login),
			)
		}
		return nil, fmt.Errorf("service: registering %s in hub %s: %w", login, hub.Name, err)
	}

	id, _ := stored.ID()
	r.logger.Info("user registered",
		slog.String("hub", hub.Name),
		slog.String("login", login),
		slog.Int("id", id),
		slog.String("state", state.String()),
	)
	return stored, nil
}

// enrich fills user.Extra with the platform's user fields.
func (r *Registrar) enrich(hub model.Hub, user *model.User) {
	id := r.nextID()
	home := cursor.New(hub.Cursor().Joinf("users", user.Login))
	stamp := r.now().UTC().Format(time.RFC3339)

	x := user.Extra
	x.Set("node_id", hub.NodeID())
	x.Set("id", id)
	x.Set("avatar_url", fmt.Sprintf("u/%d?v=4", id)) // relative, unlike the other links
	x.Set("gravatar_id", "")
	x.Set("url", home.String())
	x.Set("html_url", hub.Cursor().Join(user.Login))
	x.Set("followers_url", home.Join("followers"))
	x.Set("following_url", home.Join("following{/other_user}"))
	x.Set("gists_url", home.Join("gists{/gist_id}"))
	x.Set("starred_url", home.Join("starred{/owner}{/repo}"))
	x.Set("subscriptions_url", home.Join("subscriptions"))
	x.Set("organizations_url", home.Join("orgs"))
	x.Set("repos_url", home.Join("repos"))
	x.Set("events_url", home.Join("events{/privacy}"))
	x.Set("received_events_url", home.Join("received_events"))
	x.Set("type", "User")
	x.Set("site_admin", false)
	x.Set("name", "GitHub user")
	x.Set("company", nil)
	x.Set("blog", nil)
	x.Set("location", nil)
	x.Set("email", nil)
	x.Set("hireable", nil)
	x.Set("bio", nil)
	x.Set("public_repos", 0)
	x.Set("public_gists", 0)
	x.Set("followers", 0)
	x.Set("following", 0)
	x.Set("created_at", stamp)
	x.Set("updated_at", stamp)
}

func (r *Registrar) nextID() int {
	r.idMu.Lock()
	defer r.idMu.Unlock()
	return r.ids.IntN(MaxID)
}

// ValidateLogin rejects logins that cannot appear as a single URL path
// segment.
func ValidateLogin(login string) error {
	if login == "" {
		return apperror.ValidationFailed("login", "login is required")
	}
	if strings.ContainsAny(login, "/?#") || strings.IndexFunc(login, unicode.IsSpace) >= 0 {
		return apperror.ValidationFailed("login", fmt.Sprintf("login %q must not contain whitespace, '/', '?' or '#'", login))
	}
	return nil
}
