// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package pkgspec

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jongio/npmkit/security"
)

// FilePrefix marks a local-file package specifier.
const FilePrefix = "file:"

// MaxNameLength is the npm registry limit on package name length.
const MaxNameLength = 214

// specMetachars is the set of characters rejected in package names and
// versions. Tilde is absent because it is legal in semver ranges (~1.2.3), and
// the glob characters are absent because npm names and dist-tags never reach
// a glob position.
const specMetachars = ";&|`$(){}[]<>!\n\r"

var (
	// namePattern is the npm package name grammar: an optional @scope/ prefix
	// followed by the name, both lowercase URL-safe and not starting with . or _.
	namePattern = regexp.MustCompile(`^(@([a-z0-9-~][a-z0-9-._~]*)/)?([a-z0-9-~][a-z0-9-._~]*)$`)

	// reservedNames collide with filesystem or registry special names.
	reservedNames = map[string]bool{
		"node_modules": true,
		"favicon.ico":  true,
		"package.json": true,
		".":            true,
		"..":           true,
	}
)

// Options controls Validate.
type Options struct {
	// AllowFilePackages permits "file:" specifiers.
	AllowFilePackages bool
	// ThrowIfInvalid makes Validate return a *security.ValidationError instead
	// of a result with IsValid=false.
	ThrowIfInvalid bool
}

// ValidationResult is the outcome of a single Validate call.
type ValidationResult struct {
	IsValid       bool   `json:"isValid"`
	ErrorMsg      string `json:"errorMsg,omitempty"`
	IsFilePackage bool   `json:"isFilePackage"`
	// CleanSpec is the validated specifier with surrounding whitespace removed.
	CleanSpec    string `json:"cleanSpec,omitempty"`
	PackageName  string `json:"packageName,omitempty"`
	VersionPart  string `json:"versionPart,omitempty"`
	ResolvedPath string `json:"resolvedPath,omitempty"`
	// Kind is the rule that rejected the spec; nil when valid.
	Kind error `json:"-"`
}

// Spec re-joins PackageName and VersionPart. File packages return CleanSpec.
func (r *ValidationResult) Spec() string {
	switch {
	case r.IsFilePackage:
		return r.CleanSpec
	case r.VersionPart == "":
		return r.PackageName
	default:
		return r.PackageName + "@" + r.VersionPart
	}
}

// Err returns the failure as a *security.ValidationError, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return security.NewValidationError(r.Kind, r.ErrorMsg)
}

// Validate checks that spec is safe to hand to npm on a shell command line.
// Security rules are evaluated before format rules, so input that is both
// malformed and malicious is reported under the dangerous pattern.
//
// With ThrowIfInvalid unset, a rejected spec yields a result with
// IsValid=false and a nil error. With it set, the result is nil and the error
// is a *security.ValidationError carrying the same message.
func Validate(spec string, opts Options) (*ValidationResult, error) {
	result := validate(spec, opts.AllowFilePackages)
	if !result.IsValid && opts.ThrowIfInvalid {
		return nil, result.Err()
	}
	return result, nil
}

// MustValidate is Validate in throwing mode: any rejection is returned as an error.
func MustValidate(spec string, opts Options) (*ValidationResult, error) {
	opts.ThrowIfInvalid = true
	return Validate(spec, opts)
}

func invalid(kind error, format string, args ...any) *ValidationResult {
	return &ValidationResult{Kind: kind, ErrorMsg: fmt.Sprintf(format, args...)}
}

func validate(spec string, allowFilePackages bool) *ValidationResult {
	if spec == "" {
		return invalid(security.ErrMalformedInput, "Package spec must be a non-empty string")
	}

	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return invalid(security.ErrMalformedInput, "Package spec cannot be empty or whitespace")
	}

	if strings.HasPrefix(trimmed, FilePrefix) {
		if !allowFilePackages {
			return invalid(security.ErrFileSpec, "File protocol packages are not allowed. Set AllowFilePackages option to true.")
		}
		return validateFileSpec(strings.TrimPrefix(trimmed, FilePrefix), trimmed)
	}

	return validateRegistrySpec(trimmed)
}

func validateRegistrySpec(spec string) *ValidationResult {
	name, version, ok := splitSpec(spec)
	if !ok {
		return invalid(security.ErrFormatViolation, "Invalid scoped package format: %s", spec)
	}

	if strings.Contains(name, "..") || strings.Contains(name, `\`) {
		return invalid(security.ErrPathTraversal, "Package name contains invalid path characters: %s", name)
	}

	if strings.ContainsAny(name, specMetachars) {
		return invalid(security.ErrShellInjection, "Package name contains shell metacharacters: %s", name)
	}
	if strings.ContainsAny(version, specMetachars) {
		return invalid(security.ErrShellInjection, "Package version contains shell metacharacters: %s", version)
	}

	if reservedNames[strings.ToLower(name)] {
		return invalid(security.ErrReservedName, "Package name is reserved: %s", name)
	}

	if !namePattern.MatchString(name) {
		return invalid(security.ErrFormatViolation, "Invalid npm package name format: %s", name)
	}

	if len(name) > MaxNameLength {
		return invalid(security.ErrFormatViolation, "Package name too long (max %d characters): %s", MaxNameLength, name)
	}

	return &ValidationResult{
		IsValid:     true,
		CleanSpec:   spec,
		PackageName: name,
		VersionPart: version,
	}
}

// splitSpec separates the name from the version qualifier. Scoped specs split
// on "@" into at most three segments ("", "scope/name", "version"); unscoped
// specs split on the first "@". ok is false for scoped specs with more
// segments.
func splitSpec(spec string) (name, version string, ok bool) {
	if strings.HasPrefix(spec, "@") {
		parts := strings.Split(spec, "@")
		switch len(parts) {
		case 2:
			return "@" + parts[1], "", true
		case 3:
			return "@" + parts[1], parts[2], true
		default:
			return "", "", false
		}
	}

	if i := strings.Index(spec, "@"); i > 0 {
		return spec[:i], spec[i+1:], true
	}
	return spec, "", true
}

// FileKind distinguishes directory packages from tarballs.
type FileKind string

const (
	// FileKindDirectory is a package directory holding a package.json.
	FileKindDirectory FileKind = "directory"
	// FileKindTarball is a packed .tgz or .tar.gz archive.
	FileKindTarball FileKind = "tarball"
)

// FilePackageSpec describes a resolved "file:" specifier.
type FilePackageSpec struct {
	RawPath      string
	ResolvedPath string
	Kind         FileKind
}

// ResolveFileSpec resolves the path of a "file:" specifier (prefix removed)
// and checks that it names a package directory or a tarball. Relative paths,
// including ".." segments, are resolved against the working directory.
func ResolveFileSpec(rawPath string) (*FilePackageSpec, error) {
	if strings.TrimSpace(rawPath) == "" {
		return nil, security.NewValidationError(security.ErrFileSpec, "File path cannot be empty in file: protocol spec")
	}

	resolved, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, security.NewValidationError(security.ErrFileSpec, fmt.Sprintf("Cannot resolve file package path %s: %v", rawPath, err))
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, security.NewValidationError(security.ErrFileSpec, "File package path does not exist: "+rawPath)
		}
		return nil, security.NewValidationError(security.ErrFileSpec, fmt.Sprintf("Cannot stat file package path %s: %v", rawPath, err))
	}

	spec := &FilePackageSpec{RawPath: rawPath, ResolvedPath: resolved}
	switch {
	case info.Mode().IsRegular():
		if !IsTarball(resolved) {
			return nil, security.NewValidationError(security.ErrFileSpec, "File package must be a .tgz or .tar.gz archive")
		}
		spec.Kind = FileKindTarball
	case info.IsDir():
		if _, err := os.Stat(filepath.Join(resolved, "package.json")); err != nil {
			return nil, security.NewValidationError(security.ErrFileSpec, "File package directory must contain package.json")
		}
		spec.Kind = FileKindDirectory
	default:
		return nil, security.NewValidationError(security.ErrFileSpec, "File package must be a directory or .tgz file")
	}

	return spec, nil
}

// IsTarball reports whether path has a packed npm archive suffix.
func IsTarball(path string) bool {
	return strings.HasSuffix(path, ".tgz") || strings.HasSuffix(path, ".tar.gz")
}

func validateFileSpec(rawPath, spec string) *ValidationResult {
	fileSpec, err := ResolveFileSpec(rawPath)
	if err != nil {
		return invalid(security.Kind(err), "%s", err.Error())
	}

	return &ValidationResult{
		IsValid:       true,
		IsFilePackage: true,
		CleanSpec:     spec,
		ResolvedPath:  fileSpec.ResolvedPath,
	}
}
