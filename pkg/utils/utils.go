// Package utils provides path and process helpers shared by the call recorder packages.
// It covers XDG directory lookup, home expansion, directory creation and running
// external tools such as pactl.
package utils

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ============================================================================
// Command Utilities
// ============================================================================

// CommandExists checks if a command exists in PATH
func CommandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// RunCommand executes a command and returns its standard output.
// Standard error is folded into the returned error when the command fails.
func RunCommand(name string, args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(output), fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return string(output), fmt.Errorf("%s: %w", name, err)
	}
	return string(output), nil
}

// ============================================================================
// Environment Utilities
// ============================================================================

// GetHomeDir returns home directory
func GetHomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// GetConfigDir returns XDG config directory
func GetConfigDir() string {
	if configDir := os.Getenv("XDG_CONFIG_HOME"); configDir != "" {
		return configDir
	}
	return filepath.Join(GetHomeDir(), ".config")
}

// GetDataDir returns XDG data directory
func GetDataDir() string {
	if dataDir := os.Getenv("XDG_DATA_HOME"); dataDir != "" {
		return dataDir
	}
	return filepath.Join(GetHomeDir(), ".local", "share")
}

// ============================================================================
// File System Utilities
// ============================================================================

// ExpandHomeDir expands ~ in paths
func ExpandHomeDir(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		return filepath.Join(GetHomeDir(), path[1:])
	}
	return path
}

// EnsureDir creates directory (and parents) if it doesn't exist.
// An existing non-directory at path is an error.
func EnsureDir(path string) error {
	path = ExpandHomeDir(path)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", path)
	}
	return nil
}

// FileExists checks if file exists
func FileExists(path string) bool {
	path = ExpandHomeDir(path)
	_, err := os.Stat(path)
	return err == nil
}

// IsDirectory checks if path is a directory
func IsDirectory(path string) bool {
	path = ExpandHomeDir(path)
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
