package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"hwboard-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string         `json:"name"`
	Slots map[string]int `json:"slots"`
}

func TestRoundTrip(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:lib/jsonstore")
	defer cleanup()

	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	saved := doc{
		Name:  "colors",
		Slots: map[string]int{"AP Physics": 1, "English 10": 2},
	}
	err := Save(path, saved)
	require.NoError(t, err)

	loaded, ok := Load[doc](path)
	require.True(t, ok)
	require.Equal(t, saved, loaded)

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestMissingFileDegradesToZero(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:lib/jsonstore")
	defer cleanup()

	loaded, ok := Load[doc](filepath.Join(t.TempDir(), "nope.json"))
	require.False(t, ok)
	require.Equal(t, doc{}, loaded)
}

func TestCorruptFileDegradesToZero(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:lib/jsonstore")
	defer cleanup()

	path := filepath.Join(t.TempDir(), "bad.json")
	err := os.WriteFile(path, []byte("{not json"), 0644)
	require.NoError(t, err)

	loaded, ok := Load[doc](path)
	require.False(t, ok)
	require.Equal(t, doc{}, loaded)
}
