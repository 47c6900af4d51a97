// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// File permissions
const (
	// DirPermission is the default permission for creating directories (rwxr-x---)
	DirPermission = 0750
	// FilePermission is the default permission for creating files (rw-r--r--)
	FilePermission = 0644
	// PrivateFilePermission is used for configuration files (rw-------)
	PrivateFilePermission = 0600
)

// ErrNotFound is returned by FindUp when no ancestor holds the file.
var ErrNotFound = errors.New("file not found in any parent directory")

// AtomicWriteJSON writes data as indented JSON to a file atomically.
func AtomicWriteJSON(path string, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return AtomicWriteFile(path, append(jsonData, '\n'), FilePermission)
}

// AtomicWriteFile writes raw bytes to a file atomically.
// It writes to a temporary file in the same directory first, then renames it
// to the target path, so the file is never left in a partial state.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = tmpFile.Close() }()

	fail := func(step string, err error) error {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to %s temp file: %w", step, err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fail("close", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fail("set permissions on", err)
	}

	// Rename retries with backoff to ride out transient rename races.
	var renameErr error
	for attempt := 0; attempt < 5; attempt++ {
		renameErr = os.Rename(tmpPath, path)
		if renameErr == nil {
			return nil
		}
		if attempt < 4 {
			time.Sleep(time.Duration(20*(attempt+1)) * time.Millisecond)
		}
	}
	return fail("rename", renameErr)
}

// ReadJSON reads JSON from a file into the target.
// A missing file is reported as an error wrapping os.ErrNotExist.
func ReadJSON(path string, target any) error {
	// #nosec G304 -- callers resolve path from a located package root
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse JSON in %s: %w", path, err)
	}

	return nil
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, DirPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// FileExists checks if a file exists in a directory.
func FileExists(dir string, filename string) bool {
	_, err := os.Stat(filepath.Join(dir, filename))
	return err == nil
}

// FindUp walks from dir toward the filesystem root and returns the first
// directory (dir included) that contains filename.
func FindUp(dir, filename string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	for {
		if FileExists(current, filename) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("%s from %s: %w", filename, dir, ErrNotFound)
		}
		current = parent
	}
}
