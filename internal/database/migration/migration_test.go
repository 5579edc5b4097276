package migration

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docaudit/internal/logger"
)

func TestEmbeddedSchemaCoversAllTables(t *testing.T) {
	files, err := fs.Glob(migrationFiles, migrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var all strings.Builder
	for _, f := range files {
		b, err := migrationFiles.ReadFile(f)
		require.NoError(t, err)
		assert.Contains(t, string(b), "-- +goose Up", f)
		all.Write(b)
	}

	for _, table := range []string{
		"documents", "parsed_data", "workflows", "workflow_instances", "workflow_steps",
		"compliance_frameworks", "compliance_checks", "risk_assessments",
		"financial_extractions", "audit_trail", "workspaces", "workspace_collaborations",
		"user_profiles", "user_roles",
	} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	l := gooseLogger{log: logger.New("info", &buf).Sugar()}

	l.Printf("OK   %s (%s)\n", "00001_init_schema.sql", "12ms")

	assert.Contains(t, buf.String(), "OK   00001_init_schema.sql (12ms)")
}
