package infra_postgres_localstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

func (d *Driver) EnsureSchema(ctx context.Context) error {
	const (
		q = `
		CREATE TABLE IF NOT EXISTS local_storage (
			client_id  TEXT        NOT NULL,
			key        TEXT        NOT NULL,
			value      TEXT        NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (client_id, key)
		)
		`
	)

	if _, err := d.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("failed to create local_storage table: %w", err)
	}

	return nil
}

func (d *Driver) Get(ctx context.Context, clientID string, key string) (string, bool, error) {
	const (
		q = `
		SELECT value
		FROM local_storage
		WHERE client_id = $1 AND key = $2
		`
	)

	var value string
	err := d.db.GetContext(ctx, &value, q, clientID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}

	return value, true, nil
}

// Set upserts all entries in a single transaction, keys in sorted order.
func (d *Driver) Set(ctx context.Context, clientID string, entries map[string]string) error {
	const (
		q = `
		INSERT INTO local_storage (client_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (client_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		`
	)

	if len(entries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, q, clientID, k, entries[k]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to store %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entries: %w", err)
	}

	return nil
}

func (d *Driver) Delete(ctx context.Context, clientID string, keys ...string) error {
	const (
		q = `DELETE FROM local_storage WHERE client_id = $1 AND key = ANY($2)`
	)

	if len(keys) == 0 {
		return nil
	}

	if _, err := d.db.ExecContext(ctx, q, clientID, pq.Array(keys)); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}

	return nil
}
