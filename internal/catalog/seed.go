package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrNoBaseContent is returned when neither the user copy nor the shipped
// defaults exist.
var ErrNoBaseContent = errors.New("basecfg folder is missing, re-install is recommended")

// Seed copies baseDir to userDir when userDir does not exist yet. It reports
// whether a copy was made. An existing userDir is never touched.
func Seed(baseDir, userDir string) (bool, error) {
	if _, err := os.Stat(userDir); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", userDir, err)
	}

	info, err := os.Stat(baseDir)
	if err != nil || !info.IsDir() {
		return false, ErrNoBaseContent
	}
	if err := os.CopyFS(userDir, os.DirFS(baseDir)); err != nil {
		return false, fmt.Errorf("copy %s to %s: %w", baseDir, userDir, err)
	}
	return true, nil
}
