package configuration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mockConfig = []byte(`
common:
  production: false
  did_method: gtsc
identity:
  api_server:
    addr: :8080
`)

func TestNew(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.yaml")
	require.NoError(t, os.WriteFile(path, mockConfig, 0o600))

	t.Setenv("IDENTITY_CONFIG_YAML", path)

	cfg, err := New(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "gtsc", cfg.Common.DIDMethod)
	assert.Equal(t, ":8080", cfg.Identity.APIServer.Addr)
}

func TestNewMissingEnvVar(t *testing.T) {
	t.Setenv("IDENTITY_CONFIG_YAML", "")

	_, err := New(context.Background())
	require.Error(t, err)
}

func TestNewRejectsDirectoryAsConfigPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("IDENTITY_CONFIG_YAML", tempDir)

	_, err := New(context.Background())
	require.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "folder")
}
