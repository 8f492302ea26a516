package configutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// ReadConfig loads `name` as json5 and, when a sibling
// `<stem>.local.<ext>` file exists, merges it on top. Local files hold
// per-machine values (credentials, file paths) that stay out of the
// committed config.
func ReadConfig[T any](name string) (T, error) {
	var out T

	base, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(base) > 0 {
		err = json5.Unmarshal(base, &out)
		if err != nil {
			return out, err
		}
	}

	ext := filepath.Ext(name)
	localPath := strings.TrimSuffix(name, ext) + ".local" + ext
	local, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(local) > 0 {
		var override T
		err = json5.Unmarshal(local, &override)
		if err != nil {
			return out, err
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("applied local config overrides", "path", localPath)
	}

	if len(base) == 0 && len(local) == 0 {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively walks from the working directory up toward the
// filesystem root until it finds a config matching `name`, so commands
// behave the same from any subdirectory of the deployment.
func ReadRecursively[T any](name string) (T, error) {
	var zero T

	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return zero, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
