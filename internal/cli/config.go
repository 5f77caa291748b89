package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultServerURL = "http://localhost:5001"
	serverURLEnv     = "DESK_SERVER_URL"
)

// settings are the CLI preferences kept in ~/.config/desk/config.yaml.
type settings struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Format    string `yaml:"format,omitempty"`
}

func settingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "desk", "config.yaml"), nil
}

// readSettings returns zero settings when the file is absent.
func readSettings() (settings, error) {
	path, err := settingsPath()
	if err != nil {
		return settings{}, err
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return settings{}, nil
	case err != nil:
		return settings{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var s settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return settings{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

func writeSettings(s settings) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// serverURL picks DESK_SERVER_URL, then the saved setting, then the default.
func serverURL() string {
	if v := os.Getenv(serverURLEnv); v != "" {
		return v
	}
	if s, err := readSettings(); err == nil && s.ServerURL != "" {
		return s.ServerURL
	}
	return defaultServerURL
}

func validFormat(f string) bool {
	return f == "text" || f == "json"
}
