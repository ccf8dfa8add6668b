// This file implements default idea seeding on bootstrap.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

//go:embed seed.yaml
var seedYAML []byte

// seedFile is the shape of seed.yaml.
type seedFile struct {
	Ideas []seedIdea `yaml:"ideas"`
}

// seedIdea describes an idea to insert into an empty store.
type seedIdea struct {
	Title    string `yaml:"title"`
	Body     string `yaml:"body"`
	Priority int    `yaml:"priority"`
	Status   string `yaml:"status"`
}

// loadSeedIdeas parses and validates the embedded seed data.
func loadSeedIdeas() ([]types.Idea, error) {
	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return nil, fmt.Errorf("parsing seed data: %w", err)
	}
	ideas := make([]types.Idea, 0, len(f.Ideas))
	for _, s := range f.Ideas {
		status, err := types.ParseIdeaStatus(s.Status)
		if err != nil {
			return nil, fmt.Errorf("seed idea %q: %w", s.Title, err)
		}
		idea := types.Idea{
			Title:    s.Title,
			Body:     s.Body,
			Priority: types.Priority(s.Priority),
			Status:   status,
		}
		if err := idea.Validate(); err != nil {
			return nil, fmt.Errorf("seed idea %q: %w", s.Title, err)
		}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}

// seedIdeasIfEmpty inserts the starter ideas when the idea table has no
// rows. A non-empty table is left untouched, so this runs safely on every
// bootstrap.
func seedIdeasIfEmpty(ctx context.Context, db *sql.DB, now int64) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM idea").Scan(&count); err != nil {
		return 0, storageErr("counting ideas", "SELECT COUNT(*) FROM idea", err)
	}
	if count > 0 {
		return 0, nil
	}

	ideas, err := loadSeedIdeas()
	if err != nil {
		return 0, err
	}

	const stmt = "INSERT INTO idea (title, body, priority, status, created_at) VALUES (?, ?, ?, ?, ?)"
	err = withTx(ctx, db, func(tx *sql.Tx) error {
		for _, idea := range ideas {
			if _, err := tx.ExecContext(ctx, stmt,
				idea.Title, idea.Body, int(idea.Priority), string(idea.Status), now,
			); err != nil {
				return storageErr("seeding idea "+idea.Title, stmt, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(ideas), nil
}
