package configutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"hwboard-backend/lib/configutil"
	"hwboard-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server   string `json:"server"`
	LogFile  string `json:"log_file"`
	Password string `json:"password"`
}

func TestReadConfigLocalOverride(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:lib/configutil")
	defer cleanup()

	dir := t.TempDir()
	path := filepath.Join(dir, "app.json5")

	err := os.WriteFile(path, []byte(`{
		// comments are fine, this is json5
		server: "https://portal.example.com",
		log_file: "run.log",
	}`), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "app.local.json5"), []byte(`{
		log_file: "/tmp/run.log",
		password: "hunter2",
	}`), 0644)
	require.NoError(t, err)

	got, err := configutil.ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "https://portal.example.com", got.Server)
	require.Equal(t, "/tmp/run.log", got.LogFile)
	require.Equal(t, "hunter2", got.Password)
}

func TestReadConfigLocalOnly(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:lib/configutil")
	defer cleanup()

	dir := t.TempDir()
	err := os.WriteFile(
		filepath.Join(dir, "app.local.json5"),
		[]byte(`{server: "https://portal.example.com"}`),
		0644,
	)
	require.NoError(t, err)

	got, err := configutil.ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://portal.example.com", got.Server)
}

func TestReadConfigMissing(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:lib/configutil")
	defer cleanup()

	_, err := configutil.ReadConfig[testConfig](filepath.Join(t.TempDir(), "app.json5"))
	require.True(t, os.IsNotExist(err))
}
