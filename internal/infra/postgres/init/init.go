package infra_pg_init

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/humanbelnik/kinoshelf/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var ErrConnect = errors.New("local storage postgres unreachable")

// DSN renders the lib/pq key/value form. Empty fields are left out so the
// driver falls back to its own defaults.
func DSN(cfg config.Postgres) string {
	parts := make([]string, 0, 6)
	for _, kv := range [][2]string{
		{"host", cfg.Host},
		{"port", cfg.Port},
		{"user", cfg.User},
		{"password", cfg.Password},
		{"dbname", cfg.DBName},
		{"sslmode", cfg.SSLMode},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, " ")
}

func Connect(cfg config.Postgres) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return db, nil
}

func MustEstablishConn(cfg config.Postgres) *sqlx.DB {
	db, err := Connect(cfg)
	if err != nil {
		log.Fatalf("[postgres] %s:%s/%s: %v", cfg.Host, cfg.Port, cfg.DBName, err)
	}
	return db
}
