package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Filename limits
const (
	MaxFileNameLength = 120
)

// Characters stripped from filenames for cross-platform safety
const unsafeFileNameChars = "<>:\"/\\|?*\n\r\t"

// CreateDirectoryIfNotExists creates the directory path if missing.
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the user's Downloads directory.
func GetHomeDownloadsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads"), nil
}

// SafeFileName strips characters that are invalid on common filesystems
// and truncates to a safe length.
func SafeFileName(name string) string {
	for _, c := range unsafeFileNameChars {
		name = strings.ReplaceAll(name, string(c), "")
	}
	if len(name) > MaxFileNameLength {
		name = name[:MaxFileNameLength]
	}
	return strings.TrimSpace(name)
}
