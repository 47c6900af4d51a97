// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package pkgspec

import (
	"fmt"
	"strings"
)

// ParsedSpec is a registry specifier split into its parts.
type ParsedSpec struct {
	// Name is the full package name, "@org/basename" when scoped.
	Name string `json:"name"`
	// Org is the scope without "@", empty when unscoped.
	Org string `json:"org,omitempty"`
	// Basename is the name without its scope.
	Basename string `json:"basename"`
	// Version is the version or dist-tag, empty when unspecified.
	Version string `json:"version,omitempty"`
}

// IsScoped reports whether the spec has an organization scope.
func (p ParsedSpec) IsScoped() bool {
	return p.Org != ""
}

// String renders the spec back as name[@version].
func (p ParsedSpec) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "@" + p.Version
}

// Parse splits a registry spec into name, org, basename and version without
// applying any validation rules. Any non-empty qualifier is a version since
// registries accept arbitrary dist-tags. Run Validate first on untrusted
// input.
func Parse(spec string) (ParsedSpec, error) {
	name, version := SplitNameVersion(spec)
	if name == "" {
		return ParsedSpec{}, fmt.Errorf("empty package name in spec %q", spec)
	}

	org, basename, err := SplitName(name)
	if err != nil {
		return ParsedSpec{}, err
	}

	return ParsedSpec{Name: name, Org: org, Basename: basename, Version: version}, nil
}

// SplitNameVersion separates name and version. Scoped specs split on the last
// "@" after the scope marker; unscoped specs split on the first "@".
func SplitNameVersion(spec string) (name, version string) {
	if strings.HasPrefix(spec, "@") {
		if i := strings.LastIndex(spec, "@"); i > 0 {
			return spec[:i], spec[i+1:]
		}
		return spec, ""
	}

	name, version, _ = strings.Cut(spec, "@")
	return name, version
}

// SplitName separates a package name into org and basename. Unscoped names
// return an empty org.
func SplitName(name string) (org, basename string, err error) {
	if !strings.HasPrefix(name, "@") {
		return "", name, nil
	}

	org, basename, ok := strings.Cut(name[1:], "/")
	if !ok || org == "" || basename == "" {
		return "", "", fmt.Errorf("scoped package name %q must have the form @org/basename", name)
	}
	return org, basename, nil
}
