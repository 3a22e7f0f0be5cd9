package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs into the process environment from a .env
// file in the working directory and then from configDir/.env. Variables that
// are already set win. Missing files are skipped.
func LoadDotEnv(configDir string) ([]string, error) {
	candidates := []string{".env"}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, ".env"))
	}

	var loaded []string
	for _, path := range candidates {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, err
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
