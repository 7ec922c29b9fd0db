package web

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/haclabs/haccare/internal/records"
	"github.com/haclabs/haccare/internal/web/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c := &config.Config{Storage: config.StorageJSON, RecordsDir: filepath.Join(dir, "Records")}
	s, err := OpenStore(ctx, c)
	require.NoError(t, err)
	assert.IsType(t, &records.FileStore{}, s)

	c = &config.Config{Storage: config.StorageSQLite, DatabaseDSN: filepath.Join(dir, "h.db")}
	s, err = OpenStore(ctx, c)
	require.NoError(t, err)
	assert.IsType(t, &records.SQLiteStore{}, s)
	closeStore(s)

	_, err = OpenStore(ctx, &config.Config{Storage: "csv"})
	require.ErrorContains(t, err, "unknown storage")
}

func TestNewApp(t *testing.T) {
	dir := t.TempDir()
	var c config.Config
	c.LoadDefaults()
	c.RecordsDir = filepath.Join(dir, "Records")
	c.UsersFile = filepath.Join(dir, "users.json")
	c.SecretKey = "app-test-secret"

	app, err := NewApp(context.Background(), &c)
	require.NoError(t, err)
	require.NotNil(t, app.server)
	assert.FileExists(t, c.UsersFile)
}

func TestRun_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	var c config.Config
	c.LoadDefaults()
	c.Addr = "127.0.0.1:0"
	c.RecordsDir = filepath.Join(dir, "Records")
	c.UsersFile = filepath.Join(dir, "users.json")
	c.SecretKey = "app-test-secret"

	app, err := NewApp(context.Background(), &c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, app.Run(ctx))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false)
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
