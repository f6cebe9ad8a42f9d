// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files,
// one secret per file: the filename is the key and the trimmed contents are
// the value. Environment variables override files.
//
// Supported keys: rdm-api-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// EnvPrefix is prepended to the upper-cased key to form the environment
// variable consulted by Get: rdm-api-token → LUTETAB_RDM_API_TOKEN.
const EnvPrefix = "LUTETAB_"

// Store holds the loaded secrets.
type Store struct {
	values map[string]string
	getenv func(string) string
}

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty Store. Unreadable files are logged and
// skipped.
func Load(dir string, log *zap.Logger) (*Store, error) {
	s := &Store{values: map[string]string{}, getenv: os.Getenv}
	if log == nil {
		log = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s.values[name] = value
		}
	}
	return s, nil
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Get returns the secret for key, preferring the environment variable.
func (s *Store) Get(key string) string {
	if v := strings.TrimSpace(s.getenv(EnvName(key))); v != "" {
		return v
	}
	return s.values[key]
}

// Keys returns the names of the secrets loaded from files.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}
