package postgres

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "..", "..", "db", "migrations", name))
	require.NoError(t, err)
	return string(b)
}

// Removing a user must not silently take their tasks with them.
func TestTasksMigration_OwnerDeleteDoesNotCascade(t *testing.T) {
	sql := readMigration(t, "000002_create_tasks.up.sql")

	assert.Contains(t, sql, "user_id     UUID NOT NULL REFERENCES users (id)")
	assert.NotContains(t, sql, "CASCADE")
	assert.Contains(t, sql, "tasks_user_id_created_at_idx ON tasks (user_id, created_at DESC)")
}
