package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleINI = `
[servers]
object = localhost:8410, localhost:8411
kv = localhost:8420

[object]
backend = posix
component = server
path = /var/lib/julea/object

[kv]
backend = memory
component = server
path = /var/lib/julea/kv

[clients]
max-connections = 4
`

func TestLoadFileParsesAllSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "julea-config")
	require.NoError(t, os.WriteFile(path, []byte(sampleINI), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:8410", "localhost:8411"}, cfg.ObjectServers)
	assert.Equal(t, []string{"localhost:8420"}, cfg.KVServers)
	assert.Equal(t, "posix", cfg.Object.Backend)
	assert.Equal(t, "memory", cfg.KV.Backend)
	assert.Equal(t, 4, cfg.MaxConnections)
	assert.EqualValues(t, 2, cfg.ObjectServerCount())
	assert.EqualValues(t, 1, cfg.KVServerCount())
}

func TestLoadFileDefaultsMaxConnections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "julea-config")
	noClients := `
[servers]
object = localhost:8410
kv = localhost:8420

[object]
backend = posix

[kv]
backend = memory
`
	require.NoError(t, os.WriteFile(path, []byte(noClients), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, defaultMaxConnections, cfg.MaxConnections)
}

func TestLoadFileRejectsMissingServers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "julea-config")
	bad := `
[object]
backend = posix
[kv]
backend = memory
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileRejectsMissingBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "julea-config")
	bad := `
[servers]
object = localhost:8410
kv = localhost:8420
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadSearchOrderAbsoluteEnvPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "explicit.ini")
	require.NoError(t, os.WriteFile(path, []byte(sampleINI), 0o644))

	t.Setenv("JULEA_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "posix", cfg.Object.Backend)
}

func TestLoadSearchOrderXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	juleaDir := filepath.Join(dir, "julea")
	require.NoError(t, os.MkdirAll(juleaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(juleaDir, "julea-config"), []byte(sampleINI), 0o644))

	t.Setenv("JULEA_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CONFIG_DIRS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.KV.Backend)
}

func TestLoadFailsWhenNothingFound(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JULEA_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CONFIG_DIRS", dir)

	_, err := Load()
	assert.Error(t, err)
}
