package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dyluth/altar/internal/config"
)

// CheckExisting returns an error naming every file Initialize would
// overwrite in dir, or nil if there are none.
func CheckExisting(dir string) error {
	var existingFiles []string
	for _, name := range []string{config.DefaultPath, CatalogFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			existingFiles = append(existingFiles, name)
		}
	}

	if len(existingFiles) == 0 {
		return nil
	}

	return fmt.Errorf("project already initialized (found %s)", strings.Join(existingFiles, ", "))
}
