package formatter

import (
	"fmt"
	"os"
	"path/filepath"

	"userfetch/internal/models"
)

// BaseName is the output file name without extension.
const BaseName = "Users"

// OutputPath returns <folder>/Users.<ext>.
func OutputPath(folder string, format Format) string {
	return filepath.Join(folder, BaseName+"."+format.Extension())
}

// Save serializes users and writes them to <folder>/Users.<format>, creating
// folder if needed and overwriting any existing file. Nothing is written when
// the format is unsupported. It returns the written path.
func Save(users []models.User, folder, format string) (string, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return "", err
	}

	content, err := Serialize(users, f)
	if err != nil {
		return "", err
	}

	if folder == "" {
		folder = "."
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := OutputPath(folder, f)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path, nil
}
