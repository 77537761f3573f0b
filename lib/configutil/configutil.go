package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LocalName returns the name of the local override file of a configuration file,
// `config.json5` becomes `config.local.json5`.
func LocalName(name string) string {
	prefix, ext := splitExt(filepath.Base(name))
	local := prefix + ".local"
	if ext != "" {
		local += "." + ext
	}
	return filepath.Join(filepath.Dir(name), local)
}

func readFile[T any](name string, out *T) (bool, error) {
	content, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(content, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

// ReadConfig reads a configuration file, `name` should come with a file extension.
// The following files are merged on top of `defaults`, where a higher number takes priority.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// Zero values in a file never override a non-zero value beneath it, so boolean options
// should default to false.
//
// os.ErrNotExist is returned (along with the defaults) when neither file exists.
func ReadConfig[T any](name string, defaults T) (T, error) {
	out := defaults
	found := false

	for _, filename := range []string{name, LocalName(name)} {
		var layer T
		ok, err := readFile(filename, &layer)
		if err != nil {
			return defaults, err
		}
		if !ok {
			continue
		}
		err = mergo.Merge(&out, layer, mergo.WithOverride)
		if err != nil {
			return defaults, fmt.Errorf("merge %s: %w", filename, err)
		}
		if found {
			slog.Info("merging config with local overrides", "local", filename)
		}
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}
