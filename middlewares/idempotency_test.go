package middlewares

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// failingDB builds statements without a server and fails every delete and update.
func failingDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=shop dbname=shop sslmode=disable"), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	fail := func(d *gorm.DB) { _ = d.AddError(errors.New("connection reset")) }
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:fail", fail))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail", fail))
	return db
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestIdempotencyBookkeepingFailuresAreLogged(t *testing.T) {
	db := failingDB(t)
	logs := captureLogs(t)

	releaseKey(context.Background(), db, 7)
	assert.Contains(t, logs.String(), "idempotency key release failed")
	assert.Contains(t, logs.String(), "id=7")
	assert.Contains(t, logs.String(), "connection reset")

	logs.Reset()
	storeResponse(context.Background(), db, 7, 201, []byte(`{"id":"v1"}`))
	assert.Contains(t, logs.String(), "idempotency response store failed")
	assert.Contains(t, logs.String(), "status=201")
}
