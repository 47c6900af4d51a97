// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package pathutil

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrToolNotFound is returned by RequireTool when a tool is neither on PATH
// nor in a common install directory.
var ErrToolNotFound = errors.New("tool not found")

// windowsExts are tried in order when searching install directories on
// Windows. npm, pnpm and yarn ship as .cmd shims.
var windowsExts = []string{".exe", ".cmd"}

// FindToolInPath searches for a tool executable in the system PATH.
// Returns the full path to the executable if found, empty string otherwise.
func FindToolInPath(toolName string) string {
	// LookPath applies PATHEXT on Windows.
	path, err := exec.LookPath(toolName)
	if err != nil {
		return ""
	}
	return path
}

// searchDirs returns the directories Node.js and its package managers are
// commonly installed into.
func searchDirs() []string {
	if runtime.GOOS == "windows" {
		return []string{
			`C:\Program Files\nodejs`,
			filepath.Join(os.Getenv("APPDATA"), "npm"),
			filepath.Join(os.Getenv("LOCALAPPDATA"), "pnpm"),
			filepath.Join(os.Getenv("LOCALAPPDATA"), "Volta", "bin"),
		}
	}

	homeDir, _ := os.UserHomeDir()
	return []string{
		"/usr/local/bin",
		"/usr/bin",
		"/opt/homebrew/bin",
		filepath.Join(homeDir, ".volta", "bin"),
		filepath.Join(homeDir, ".npm-global", "bin"),
		filepath.Join(homeDir, ".local", "share", "pnpm"),
		filepath.Join(homeDir, ".yarn", "bin"),
	}
}

// SearchToolInSystemPath searches for a tool in common install directories.
// This finds tools that are installed but not on the current PATH.
// Returns the full path to the executable if found, empty string otherwise.
func SearchToolInSystemPath(toolName string) string {
	return searchIn(searchDirs(), toolName)
}

func searchIn(dirs []string, toolName string) string {
	names := []string{toolName}
	if runtime.GOOS == "windows" && filepath.Ext(toolName) == "" {
		names = names[:0]
		for _, ext := range windowsExts {
			names = append(names, toolName+ext)
		}
	}

	for _, dir := range dirs {
		for _, name := range names {
			fullPath := filepath.Join(dir, name)
			if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
				return fullPath
			}
		}
	}
	return ""
}

// FindTool looks on PATH first and then in common install directories.
func FindTool(toolName string) string {
	if path := FindToolInPath(toolName); path != "" {
		return path
	}
	return SearchToolInSystemPath(toolName)
}

// RequireTool returns the path of toolName or an error wrapping
// ErrToolNotFound that carries an install suggestion.
func RequireTool(toolName string) (string, error) {
	if path := FindTool(toolName); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s. %s", ErrToolNotFound, toolName, GetInstallSuggestion(toolName))
}

// GetInstallSuggestion returns a suggestion for how to install a missing tool.
func GetInstallSuggestion(toolName string) string {
	suggestions := map[string]string{
		"node": "Install from https://nodejs.org/",
		"npm":  "Install Node.js from https://nodejs.org/",
		"pnpm": "Install from https://pnpm.io/installation",
		"yarn": "Install from https://yarnpkg.com/getting-started/install",
	}

	if suggestion, ok := suggestions[toolName]; ok {
		return suggestion
	}
	return fmt.Sprintf("Please install %s manually", toolName)
}
