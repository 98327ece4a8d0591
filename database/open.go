package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// PingTimeout bounds the connectivity check made by Open.
const PingTimeout = 5 * time.Second

// Open connects to the database described by cfg and verifies the connection.
// The caller owns the returned handle and must close it.
func Open(ctx context.Context, cfg Config) (*sql.DB, *Dialect, error) {
	d, err := Lookup(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}
	dsn, err := d.DSN(cfg)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "building %s connection string", d.Name)
	}

	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s database", d.Name)
	}
	if d.Name == "sqlite" {
		// A single connection keeps one writer per file.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, errors.Wrapf(err, "connecting to %s database %q", d.Name, cfg.Name)
	}
	return db, d, nil
}
