// Package env loads KEY=VALUE files into the process environment.
package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads path (e.g. ".env") and sets each KEY=VALUE line that is not
// already set in the environment, so real variables win over the file.
// Empty lines, # comments and an optional "export " prefix are accepted.
// A missing file is not an error. Load returns the keys it set.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var set []string
	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		key, value, ok, err := parseLine(scanner.Text())
		if err != nil {
			return set, fmt.Errorf("env: %s:%d: %w", path, n, err)
		}
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return set, err
		}
		set = append(set, key)
	}
	return set, scanner.Err()
}

func parseLine(line string) (key, value string, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false, nil
	}
	line = strings.TrimPrefix(line, "export ")
	k, v, found := strings.Cut(line, "=")
	key = strings.TrimSpace(k)
	if !found || key == "" {
		return "", "", false, fmt.Errorf("expected KEY=VALUE, got %q", line)
	}
	value = strings.TrimSpace(v)
	if len(value) >= 2 && (value[0] == '"' && value[len(value)-1] == '"' || value[0] == '\'' && value[len(value)-1] == '\'') {
		value = value[1 : len(value)-1]
	}
	return key, value, true, nil
}
