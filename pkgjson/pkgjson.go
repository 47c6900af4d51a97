// Package pkgjson locates and reads package.json manifests.
package pkgjson

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jongio/npmkit/fileutil"
	"github.com/jongio/npmkit/pkgspec"
)

// FileName is the npm manifest file name.
const FileName = "package.json"

// ErrNoPackageRoot is returned when no directory at or above the search start
// holds a package.json.
var ErrNoPackageRoot = errors.New("no package.json found")

// PackageJSON is the subset of a package manifest npmkit reads.
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`

	// Dir is the directory the manifest was read from.
	Dir string `json:"-"`
}

// FindRoot returns the nearest directory at or above dir that contains a
// package.json. dir need only be somewhere inside the package.
func FindRoot(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: search directory is empty", ErrNoPackageRoot)
	}

	root, err := fileutil.FindUp(dir, FileName)
	if err != nil {
		if errors.Is(err, fileutil.ErrNotFound) {
			return "", fmt.Errorf("%w at or above %s", ErrNoPackageRoot, dir)
		}
		return "", err
	}
	return root, nil
}

// Read finds the package root containing dir and decodes its manifest.
func Read(dir string) (*PackageJSON, error) {
	root, err := FindRoot(dir)
	if err != nil {
		return nil, err
	}
	return ReadFile(filepath.Join(root, FileName))
}

// ReadFile decodes the manifest at path.
func ReadFile(path string) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := fileutil.ReadJSON(path, &pkg); err != nil {
		return nil, err
	}
	pkg.Dir = filepath.Dir(path)
	return &pkg, nil
}

// Parsed splits the manifest name into org and basename and attaches the
// manifest version.
func (p *PackageJSON) Parsed() (pkgspec.ParsedSpec, error) {
	if p.Name == "" {
		return pkgspec.ParsedSpec{}, fmt.Errorf("package.json in %s has no name", p.Dir)
	}

	org, basename, err := pkgspec.SplitName(p.Name)
	if err != nil {
		return pkgspec.ParsedSpec{}, err
	}
	return pkgspec.ParsedSpec{Name: p.Name, Org: org, Basename: basename, Version: p.Version}, nil
}

// HasDependency reports whether name is listed in dependencies or
// devDependencies.
func (p *PackageJSON) HasDependency(name string) bool {
	if _, ok := p.Dependencies[name]; ok {
		return true
	}
	_, ok := p.DevDependencies[name]
	return ok
}
