package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/fakehub/internal/apperror"
	"github.com/sakif/fakehub/internal/repository"
)

// Seeder loads an init-state source into the live store.
type Seeder struct {
	hubs      *HubService
	addressOf func(hubName string) string
	logger    *slog.Logger
}

// NewSeeder creates a Seeder. addressOf supplies the address of hubs the
// source lists without one.
func NewSeeder(hubs *HubService, addressOf func(hubName string) string, logger *slog.Logger) *Seeder {
	return &Seeder{
		hubs:      hubs,
		addressOf: addressOf,
		logger:    logger,
	}
}

// FixedAddress returns an addressOf function that ignores the hub name.
func FixedAddress(address string) func(string) string {
	return func(string) string { return address }
}

// SeedResult counts what a Load did.
type SeedResult struct {
	HubsCreated int
	Registered  int
	Skipped     int
}

// Load creates missing hubs and registers every listed login. Logins that are
// already registered are skipped, so loading the same source twice is a
// no-op.
func (s *Seeder) Load(ctx context.Context, src repository.SeedSource, started time.Time) (SeedResult, error) {
	var res SeedResult

	seeds, err := src.Hubs(ctx)
	if err != nil {
		return res, fmt.Errorf("service: reading init state: %w", err)
	}

	for _, seed := range seeds {
		hub, err := s.hubs.LookupHub(seed.Name)
		if errors.Is(err, apperror.ErrNotFound) {
			address := seed.Address
			if address == "" {
				address = s.addressOf(seed.Name)
			}
			hub, err = s.hubs.CreateHub(seed.Name, address, started)
			if err != nil {
				return res, fmt.Errorf("service: creating seeded hub %s: %w", seed.Name, err)
			}
			res.HubsCreated++
		} else if err != nil {
			return res, fmt.Errorf("service: looking up seeded hub %s: %w", seed.Name, err)
		}

		for _, login := range seed.Logins {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if _, err := s.hubs.Register(hub, login); err != nil {
				if errors.Is(err, apperror.ErrConflict) {
					res.Skipped++
					continue
				}
				return res, err
			}
			res.Registered++
		}
	}

	s.logger.Info("init state loaded",
		slog.Int("hubs_created", res.HubsCreated),
		slog.Int("registered", res.Registered),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}
