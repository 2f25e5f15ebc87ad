package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hms/config"
)

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestRunMigrations_AppliesPendingInOrder(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"0002_rooms.sql": "CREATE TABLE rooms (id BIGSERIAL);",
		"0001_init.sql":  "CREATE TABLE patients (id BIGSERIAL);",
		"README.md":      "not a migration",
	})

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, name, applied_at FROM migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "name", "applied_at"}).
			AddRow("0001", "init", time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE rooms").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("INSERT INTO migrations").
		WithArgs("0002", "rooms", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = RunMigrations(context.Background(), mock, dir, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_RollsBackFailedFile(t *testing.T) {
	dir := writeMigrations(t, map[string]string{"0001_init.sql": "CREATE TABLE broken ("})

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("syntax error at end of input")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version, name, applied_at FROM migrations").
		WillReturnRows(pgxmock.NewRows([]string{"version", "name", "applied_at"}))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE broken").WillReturnError(boom)
	mock.ExpectRollback()

	err = RunMigrations(context.Background(), mock, dir, zap.NewNop())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "0001_init.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_MissingDirectory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT version").WillReturnRows(pgxmock.NewRows([]string{"version", "name", "applied_at"}))

	err = RunMigrations(context.Background(), mock, filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	assert.ErrorContains(t, err, "migrations directory")
}

func TestConnString(t *testing.T) {
	cfg := config.PostgresConfig{
		Host: "db", Port: "5432", Username: "hms", Password: "secret", DBName: "hms", SSLMode: "require",
	}

	assert.Equal(t, "postgres://hms:secret@db:5432/hms?sslmode=require", ConnString(cfg))
}
