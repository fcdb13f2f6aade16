package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/fakehub/internal/apperror"
	"github.com/sakif/fakehub/internal/repository"
)

var _ repository.SeedSource = (*DB)(nil)

// SeedHub records a hub. An empty url means "use the server's address".
// Seeding an existing name updates its url.
func (db *DB) SeedHub(ctx context.Context, name, url string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.ValidationFailed("name", "hub name is required")
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO github (name, url) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET url = excluded.url`,
		name, url,
	)
	if err != nil {
		return fmt.Errorf("sqlite: seeding hub %s: %w", name, err)
	}
	return nil
}

// SeedUser records login under the hub called hubName. The hub must have been
// seeded first.
func (db *DB) SeedUser(ctx context.Context, hubName, login string) error {
	var hubID int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM github WHERE name = ?`, hubName,
	).Scan(&hubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("hub", hubName)
		}
		return fmt.Errorf("sqlite: looking up hub %s: %w", hubName, err)
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (login, github) VALUES (?, ?)
		 ON CONFLICT(login, github) DO NOTHING`,
		login, hubID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: seeding user %s in hub %s: %w", login, hubName, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.AlreadyExists("login", login)
	}
	return nil
}

// Hubs returns every seeded hub with its logins, hubs and logins in insertion
// order. Hubs without users are included with an empty Logins slice.
func (db *DB) Hubs(ctx context.Context) ([]repository.SeedHub, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT g.name, g.url, u.login
		 FROM github g
		 LEFT JOIN users u ON u.github = g.id
		 ORDER BY g.id, u.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing seed hubs: %w", err)
	}
	defer rows.Close()

	var hubs []repository.SeedHub
	index := map[string]int{}
	for rows.Next() {
		var (
			name, url string
			login     sql.NullString
		)
		if err := rows.Scan(&name, &url, &login); err != nil {
			return nil, fmt.Errorf("sqlite: scanning seed hub row: %w", err)
		}

		i, ok := index[name]
		if !ok {
			hubs = append(hubs, repository.SeedHub{Name: name, Address: url, Logins: []string{}})
			i = len(hubs) - 1
			index[name] = i
		}
		if login.Valid {
			hubs[i].Logins = append(hubs[i].Logins, login.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating seed hubs: %w", err)
	}

	return hubs, nil
}
