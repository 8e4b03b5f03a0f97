package postgres

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

var schemaTemplate = template.Must(template.New("schema").Parse(schemaSQL))

// RenderSchema returns the DDL with table names substituted
func RenderSchema(tables *TableNames) (string, error) {
	var buf bytes.Buffer
	if err := schemaTemplate.Execute(&buf, tables); err != nil {
		return "", fmt.Errorf("render schema: %w", err)
	}
	return buf.String(), nil
}

// EnsureSchema creates tables and indexes if they do not exist. Idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	ddl, err := RenderSchema(tables)
	if err != nil {
		return err
	}
	// Multi-statement DDL goes through the simple protocol (no parameters)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// DropSchema removes all tables for the prefix. Used by the seed tool's --reset.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	query := fmt.Sprintf("DROP TABLE IF EXISTS %s, %s, %s CASCADE", tables.Projects, tables.Styles, tables.Users)
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}
