package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpeters/draftwire/go/internal/dbconfig"
)

// CatalogEntrySeed matches the catalog JSON layout. Ordinal is the stable
// per-session rank the fallback pick uses; the file must list entries with
// unique ordinals per session.
type CatalogEntrySeed struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	Label        string    `json:"label"`
	SlotCategory string    `json:"slot_category"`
	Ordinal      int       `json:"ordinal"`
}

func main() {
	ctx := context.Background()

	path := "go/internal/assets/catalog_entries.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		os.Exit(1)
	}
	var entries []CatalogEntrySeed
	if err := json.Unmarshal(data, &entries); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal catalog entries: %v\n", err)
		os.Exit(1)
	}

	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	total, inserted, skipped, errs := len(entries), 0, 0, 0
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		tag, err := pool.Exec(ctx, `
            INSERT INTO catalog_entries (
              id, session_id, label, slot_category, ordinal
            ) VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (session_id, ordinal) DO NOTHING
        `, e.ID, e.SessionID, e.Label, e.SlotCategory, e.Ordinal)
		if err != nil {
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}
	fmt.Printf(
		"Catalog seed: total=%d inserted=%d skipped=%d errors=%d\n",
		total, inserted, skipped, errs,
	)
}
