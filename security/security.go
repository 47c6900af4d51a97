// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package security provides input validation for values that end up on a
// shell command line: filesystem paths, package manager names and config file
// permissions.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// pathMetachars is the set of characters rejected in filesystem paths.
// It is broader than the package spec set: globs (* ?) and tilde expansion are
// also refused because the path is used directly as a shell argument.
const pathMetachars = ";&|`$(){}[]<>!*?~\n\r"

// ErrInsecureFilePermissions indicates a file has insecure (world-writable) permissions.
var ErrInsecureFilePermissions = errors.New("insecure file permissions")

// ContainsPathMetachars reports whether s contains any character from the
// path metacharacter set.
func ContainsPathMetachars(s string) bool {
	return strings.ContainsAny(s, pathMetachars)
}

// ValidatePath checks that path is safe to pass to a shell and, when basePath
// is non-empty, that it resolves to a location inside basePath.
// It returns the trimmed path, otherwise unmodified.
func ValidatePath(path, basePath string) (string, error) {
	if path == "" {
		return "", NewValidationError(ErrMalformedInput, "Path must be a non-empty string")
	}

	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", NewValidationError(ErrMalformedInput, "Path cannot be empty or whitespace")
	}

	if ContainsPathMetachars(trimmed) {
		return "", NewValidationError(ErrShellInjection, "Path contains shell metacharacters")
	}

	if basePath != "" {
		if err := checkContained(trimmed, basePath); err != nil {
			return "", err
		}
	}

	return trimmed, nil
}

// checkContained resolves base and base-joined-path and requires the target to
// be the base itself or below it. The separator is appended before the prefix
// comparison so that /base-evil does not pass against /base.
func checkContained(path, basePath string) error {
	realBase, err := canonicalize(basePath)
	if err != nil {
		return NewValidationError(ErrPathTraversal, fmt.Sprintf("Path traversal detected: cannot resolve base path: %v", err))
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(realBase, target)
	}
	realTarget, err := canonicalize(target)
	if err != nil {
		return NewValidationError(ErrPathTraversal, fmt.Sprintf("Path traversal detected: cannot resolve path: %v", err))
	}

	if realTarget == realBase {
		return nil
	}
	prefix := realBase
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(realTarget, prefix) {
		return NewValidationError(ErrPathTraversal, "Path traversal detected")
	}
	return nil
}

// canonicalize returns the absolute, cleaned form of path with symbolic links
// resolved. For a path that does not exist yet, the longest existing ancestor
// is resolved and the missing components are joined back on, so a new file
// under a symlinked directory is judged by where it would actually be written.
func canonicalize(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absPath = filepath.Clean(absPath)

	var missing []string
	dir := absPath
	for {
		realPath, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{realPath}, missing...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		if info, lerr := os.Lstat(dir); lerr == nil && info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("dangling symbolic link %s", dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return absPath, nil
		}
		missing = append([]string{filepath.Base(dir)}, missing...)
		dir = parent
	}
}

// ValidatePackageManager checks that the package manager binary is one of the
// npm-compatible clients this module knows how to drive.
func ValidatePackageManager(pm string) error {
	allowed := map[string]bool{
		"npm":  true,
		"pnpm": true,
		"yarn": true,
	}

	if !allowed[pm] {
		return fmt.Errorf("invalid package manager: %s", pm)
	}

	return nil
}

// ValidateFilePermissions checks if a file has secure permissions.
// On Unix systems, it ensures the file is not world-writable.
// On Windows, this check is skipped as Windows uses ACLs differently.
func ValidateFilePermissions(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Mode().Perm()&0o022 != 0 {
		return ErrInsecureFilePermissions
	}

	return nil
}
