package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Operating system identifiers
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// Platform open commands
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"

	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

// RevealFile opens the system file manager with the file highlighted
// where the platform supports it.
func RevealFile(filePath string) error {
	absPath, err := resolveFile(filePath)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, WindowsSelectParam+absPath).Run()
	case OSLinux:
		// File selection is not standardized on Linux; open the parent dir.
		return exec.Command(XDGOpenCommand, filepath.Dir(absPath)).Run()
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// OpenFile opens the file with the default system application.
func OpenFile(filePath string) error {
	absPath, err := resolveFile(filePath)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, absPath).Run()
	case OSWindows:
		return exec.Command("cmd", "/C", "start", "", absPath).Run()
	case OSLinux:
		return exec.Command(XDGOpenCommand, absPath).Run()
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

func resolveFile(filePath string) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("file does not exist: %w", err)
	}
	return filepath.Abs(filePath)
}
