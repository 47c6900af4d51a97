package npm

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPackages is returned by Install when no package is given.
	ErrNoPackages = errors.New("no packages specified; specify at least one package")
	// ErrConflictingSave is returned when both SaveDev and SaveProd are set.
	ErrConflictingSave = errors.New("both saveDev and saveProd were specified")
	// ErrProjectPathRequired is returned for local operations without a project path.
	ErrProjectPathRequired = errors.New("projectPath is required for non-global operations")
	// ErrGlobalWithProjectPath is returned when Update gets both targets.
	ErrGlobalWithProjectPath = errors.New("global and projectPath are mutually exclusive")
	// ErrPackageNameRequired is returned by View without a package name.
	ErrPackageNameRequired = errors.New("packageName is required")
	// ErrPackageNotFound matches every *PackageNotFoundError.
	ErrPackageNotFound = errors.New("package not found in registry")
	// ErrRegistryUnavailable is returned while the registry circuit breaker is open.
	ErrRegistryUnavailable = errors.New("npm registry unavailable")
	// ErrRateLimited is returned when a registry-bound command cannot get a
	// rate limiter slot before its context expires.
	ErrRateLimited = errors.New("npm registry rate limit")
	// ErrInvalidOutput is returned when npm emits output that is not the expected JSON.
	ErrInvalidOutput = errors.New("invalid npm output")
)

// PackageNotFoundError reports a registry lookup that npm could not resolve.
type PackageNotFoundError struct {
	Spec string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %q not found in registry", e.Spec)
}

// Is matches ErrPackageNotFound.
func (e *PackageNotFoundError) Is(target error) bool {
	return target == ErrPackageNotFound
}
