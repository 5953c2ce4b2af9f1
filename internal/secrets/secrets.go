// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads database credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key and the trimmed
// file contents are the value.
//
// Recognized keys: database-url, database-password.
package secrets

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// KeyDatabaseURL holds a full connection URL used when none is given.
	KeyDatabaseURL = "database-url"
	// KeyDatabasePassword is merged into a URL that names a user but no password.
	KeyDatabasePassword = "database-password"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[entry.Name()] = value
		}
	}

	return secrets, nil
}

// WithPassword sets password on rawURL when the URL names a user without a
// password. Any other URL, or an empty password, is returned unchanged.
func WithPassword(rawURL, password string) string {
	if password == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil || u.User.Username() == "" {
		return rawURL
	}
	if _, set := u.User.Password(); set {
		return rawURL
	}
	u.User = url.UserPassword(u.User.Username(), password)
	return u.String()
}
