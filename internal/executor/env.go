package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/runger/taskrun/internal/runfile"
	"github.com/runger/taskrun/internal/settings"
)

// Environ builds the child environment for recipes in dir: the parent
// environment, then `.env` values when dotenv-load is on, then Runfile
// assignments that are exported (individually or via the export setting).
// Later entries win, so assignments shadow `.env` values of the same name.
func Environ(s *settings.Settings, assignments []runfile.Assignment, dir string) ([]string, error) {
	env := os.Environ()

	if s.DotenvLoad != nil && *s.DotenvLoad {
		dotenv, err := loadDotenv(filepath.Join(dir, ".env"))
		if err != nil {
			return nil, err
		}
		env = append(env, dotenv...)
	}

	for _, a := range assignments {
		if a.Exported || s.Export {
			env = append(env, a.Name+"="+a.Value.Cooked)
		}
	}

	return env, nil
}

// loadDotenv reads KEY=VALUE pairs from a dotenv file. A missing file is
// not an error. Blank lines and # comments are skipped; single or double
// quotes around a value are stripped. No interpolation or multi-line
// values.
func loadDotenv(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var env []string
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected KEY=VALUE", path, i+1)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		env = append(env, key+"="+value)
	}
	return env, nil
}
