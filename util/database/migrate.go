package database

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var schema string

// Migrate applies the idempotent schema.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, schema)
	return err
}
