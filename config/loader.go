package config

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultFileName is the config file looked up in the user's home directory.
const DefaultFileName = ".wg-routes.toml"

// DefaultPath returns ~/.wg-routes.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultFileName), nil
}

func readConfig(logger *zap.Logger, p string) (data []byte, err error) {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "https://") {
		logger.Sugar().Debugf("reading config at URL %s", p)
		resp, err := http.Get(p)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: %s", p, resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
	logger.Sugar().Debugf("reading config at filesystem path %s", p)
	return os.ReadFile(p)
}

// Display returns the raw contents of the config at p.
func Display(logger *zap.Logger, p string) ([]byte, error) {
	data, err := readConfig(logger, p)
	if err != nil {
		return nil, fmt.Errorf("reading config file error: %w", err)
	}
	return data, nil
}
