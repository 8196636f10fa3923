// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the
// key name and the file contents (trimmed) are the value.
//
// The generation stages need only one key, anthropic-api-key; other
// files are loaded but unused.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AnthropicKeyFile is the key file the generation backend requires.
const AnthropicKeyFile = "anthropic-api-key"

// EnvKey is the environment fallback for the generation key.
const EnvKey = "ANTHROPIC_API_KEY"

// Store holds loaded secrets keyed by filename.
type Store map[string]string

// Load reads all files in dir into a Store. A missing directory is not
// an error; Load returns an empty Store. Unreadable files produce a
// warning on stderr but do not abort.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			store[name] = value
		}
	}

	return store, nil
}

// AnthropicAPIKey resolves the generation key. An explicit override
// (from configuration or a flag) wins, then the loaded key file, then
// the ANTHROPIC_API_KEY environment variable. Returns "" when no source
// has a value.
func (s Store) AnthropicAPIKey(override string) string {
	if override != "" {
		return override
	}
	if v := s[AnthropicKeyFile]; v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(EnvKey))
}
