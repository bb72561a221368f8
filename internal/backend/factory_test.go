package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finfamily/internal/config"
	"finfamily/internal/core"
)

func TestBackendType(t *testing.T) {
	tests := []struct {
		bt     BackendType
		valid  bool
		remote bool
	}{
		{MemoryBackend, true, false},
		{FileBackend, true, false},
		{SQLiteBackend, true, false},
		{PostgresBackend, true, true},
		{RESTBackend, true, true},
		{MongoBackend, true, true},
		{"sheets", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.bt.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.bt.IsValid())
			assert.Equal(t, tt.remote, tt.bt.IsRemote())
		})
	}
	assert.Equal(t, []string{"memory", "file", "sqlite", "postgres", "rest", "mongo"}, GetBackendTypeStrings())
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "rest", RemoteURL: "https://x.supabase.co", RemoteKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, RESTBackend, cfg.Type)
	assert.Equal(t, "https://x.supabase.co", cfg.RemoteURL)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	require.Error(t, err)
}

func TestCreateBackendLocal(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"file", Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "data")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "ledger.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = res.Close() })

			assert.Equal(t, tt.cfg.Type, res.Type)
			cats, err := res.Persistence.ListCategories(ctx)
			require.NoError(t, err)
			assert.Empty(t, cats)
		})
	}
}

func TestCreateBackendNeedsConfiguration(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	tests := []struct {
		name    string
		cfg     Config
		missing []string
	}{
		{"postgres", Config{Type: PostgresBackend}, []string{"POSTGRES_DSN"}},
		{"rest", Config{Type: RESTBackend}, []string{"REMOTE_URL", "REMOTE_KEY"}},
		{"mongo", Config{Type: MongoBackend, MongoDB: "finfamily"}, []string{"MONGODB_URI"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.CreateBackend(ctx, tt.cfg)
			var cfgErr *core.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.missing, cfgErr.Missing)
			assert.Equal(t, core.KindConfiguration, core.KindOf(err))
		})
	}
}

func TestCreateBackendInvalid(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	require.Error(t, err)
	_, err = f.CreateBackend(context.Background(), Config{Type: "bogus"})
	require.Error(t, err)
}

func TestBackendResultCloseWithoutCleanup(t *testing.T) {
	var nilResult *BackendResult
	assert.NoError(t, nilResult.Close())
	assert.NoError(t, (&BackendResult{}).Close())
}
