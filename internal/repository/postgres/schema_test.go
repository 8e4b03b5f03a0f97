package postgres

import (
	"strings"
	"testing"
)

func TestRenderSchema(t *testing.T) {
	tables := NewTableNames("test_")

	ddl, err := RenderSchema(tables)
	if err != nil {
		t.Fatalf("RenderSchema() error = %v", err)
	}

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS test_projects",
		"CREATE TABLE IF NOT EXISTS test_styles",
		"CREATE TABLE IF NOT EXISTS test_users",
		"test_styles_one_default_idx ON test_styles (user_id, kind) WHERE default_style",
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("schema missing %q", want)
		}
	}
	if strings.Contains(ddl, "{{") {
		t.Error("schema has unrendered placeholders")
	}
}

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("prod_")
	if tables.Projects != "prod_projects" || tables.Styles != "prod_styles" || tables.Users != "prod_users" {
		t.Errorf("unexpected table names: %+v", tables)
	}
}
