package npm

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/jongio/npmkit/cmdutil"
	"github.com/jongio/npmkit/pkgjson"
	"github.com/jongio/npmkit/pkgspec"
)

// InstallOptions controls Install.
type InstallOptions struct {
	// Packages are the specs to install. At least one is required.
	Packages []string
	// DevPaths are searched for local checkouts of the packages. Nil uses
	// the client's configured dev paths.
	DevPaths []string
	Global   bool
	// ProjectPath is the project to install into. Required unless Global.
	ProjectPath string
	SaveDev     bool
	SaveProd    bool
	// Verbose echoes npm output.
	Verbose bool
	// OnLine receives each line npm prints, echoed or not.
	OnLine cmdutil.OutputLineHandler
}

// InstallResult lists the packages an Install handled.
type InstallResult struct {
	InstalledPackages  []string `json:"installedPackages"`
	LocalPackages      []string `json:"localPackages"`
	ProductionPackages []string `json:"productionPackages"`
}

// Install runs `npm install` for opts.Packages. Packages found in a dev path
// are installed from the local directory instead of the registry.
func (c *Client) Install(ctx context.Context, opts InstallOptions) (*InstallResult, error) {
	if len(opts.Packages) == 0 {
		return nil, ErrNoPackages
	}
	if opts.SaveDev && opts.SaveProd {
		return nil, ErrConflictingSave
	}
	if opts.ProjectPath == "" && !opts.Global {
		return nil, ErrProjectPathRequired
	}

	var dir string
	if opts.ProjectPath != "" {
		var err error
		if dir, err = c.validatePath("install", opts.ProjectPath); err != nil {
			return nil, err
		}
	}

	devPaths := c.devPaths
	if opts.DevPaths != nil {
		var err error
		if devPaths, err = c.validateDevPaths(opts.DevPaths); err != nil {
			return nil, err
		}
	}

	result := &InstallResult{
		InstalledPackages:  []string{},
		LocalPackages:      []string{},
		ProductionPackages: []string{},
	}
	args := make([]string, 0, len(opts.Packages))

	for _, spec := range opts.Packages {
		res, err := c.validateSpec("install", spec, true)
		if err != nil {
			return nil, err
		}
		result.InstalledPackages = append(result.InstalledPackages, spec)

		if !res.IsFilePackage && len(devPaths) > 0 {
			localDir, err := findLocalPackage(devPaths, res.PackageName)
			if err != nil {
				return nil, err
			}
			if localDir != "" {
				c.log.WithOperation("install").WithPackage(spec).Debug("using local package", "dir", localDir)
				result.LocalPackages = append(result.LocalPackages, spec)
				args = append(args, localDir)
				continue
			}
		}

		result.ProductionPackages = append(result.ProductionPackages, spec)
		args = append(args, res.CleanSpec)
	}

	flags := []string{"install"}
	if opts.Global {
		flags = append(flags, "--global")
	}
	switch {
	case opts.SaveDev:
		flags = append(flags, "--save-dev")
	case opts.SaveProd:
		flags = append(flags, "--save-prod")
	}

	line := c.registryCommand(flags, args)
	if _, err := c.runRegistry(ctx, "install", line, cmdutil.RunOptions{Dir: dir, Silent: !opts.Verbose, OnLine: opts.OnLine}); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) validateDevPaths(paths []string) ([]string, error) {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		v, err := c.validatePath("install", p)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, v)
	}
	return cleaned, nil
}

// findLocalPackage returns the directory of the first dev path manifest
// whose name is name, or "" when none matches.
func findLocalPackage(devPaths []string, name string) (string, error) {
	org, basename, err := pkgspec.SplitName(name)
	if err != nil {
		return "", err
	}

	for _, devPath := range devPaths {
		candidates := []string{filepath.Join(devPath, pkgjson.FileName)}
		if org != "" {
			candidates = append(candidates,
				filepath.Join(devPath, org, basename, pkgjson.FileName),
				filepath.Join(devPath, "@"+org, basename, pkgjson.FileName),
			)
		} else {
			candidates = append(candidates, filepath.Join(devPath, basename, pkgjson.FileName))
		}

		for _, candidate := range candidates {
			pkg, err := pkgjson.ReadFile(candidate)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return "", err
			}
			if pkg.Name == name {
				return pkg.Dir, nil
			}
		}
	}
	return "", nil
}
