package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Empty(t, cfg.Storage.Path)
	assert.Equal(t, "twitter", cfg.Ingest.SourceID)
	assert.Equal(t, "id_str", cfg.Ingest.PostIDField)
	assert.Equal(t, "_", cfg.Reshape.Social.Delimiter)
	assert.Len(t, cfg.Reshape.Microblog.Shards, 5)
	assert.Equal(t, "facebook_data/processed/filtered_comment_post.csv", cfg.Reshape.Social.Output)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: "9090"
anonymize:
  salt: file-salt
reshape:
  forum:
    repair: none
  microblog:
    shards: [a.json, b.json]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("DB_FILE_PATH", "/tmp/ingest.db")
	t.Setenv("ANONYMIZE_SALT", "env-salt")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "/tmp/ingest.db", cfg.Storage.Path)
	assert.Equal(t, "env-salt", cfg.Anonymize.Salt)
	assert.Equal(t, "none", cfg.Reshape.Forum.Repair)
	assert.Equal(t, []string{"a.json", "b.json"}, cfg.Reshape.Microblog.Shards)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
