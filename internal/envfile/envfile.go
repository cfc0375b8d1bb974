// Package envfile reads line-oriented KEY=VALUE configuration files.
//
// Blank lines and lines starting with '#' are skipped, as are lines without
// '='. The first '=' separates key from value; surrounding whitespace is
// trimmed from both. There is no quoting or escaping.
package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse reads KEY=VALUE pairs from r. Later keys override earlier ones.
func Parse(r io.Reader) (map[string]string, error) {
	env := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		env[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return env, nil
}

// Load parses the file at path. A missing file is reported with an error
// satisfying os.IsNotExist.
func Load(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Missing returns the keys that are absent or empty in env, in the order given.
func Missing(env map[string]string, keys ...string) []string {
	var out []string
	for _, k := range keys {
		if env[k] == "" {
			out = append(out, k)
		}
	}
	return out
}
