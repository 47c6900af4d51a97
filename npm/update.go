package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/mod/semver"

	"github.com/jongio/npmkit/cmdutil"
	"github.com/jongio/npmkit/pkgjson"
)

// UpdateOptions controls Update. Exactly one of Global and ProjectPath must
// be set.
type UpdateOptions struct {
	// DryRun reports what would change without installing.
	DryRun bool
	Global bool
	// Packages restricts the check to the named packages.
	Packages    []string
	ProjectPath string
}

// UpdateResult is the outcome of Update.
type UpdateResult struct {
	Updated bool     `json:"updated"`
	Actions []string `json:"actions"`
	// Result is the JSON emitted by `npm install --json`. Its shape depends
	// on the npm version.
	Result json.RawMessage `json:"result,omitempty"`
}

// outdatedEntry is one package reported by `npm outdated --json`.
type outdatedEntry struct {
	Name    string
	Current string
	Wanted  string
	Latest  string
}

// Update installs the in-range updates reported by `npm outdated` and lists
// out-of-range updates as available.
func (c *Client) Update(ctx context.Context, opts UpdateOptions) (*UpdateResult, error) {
	if opts.ProjectPath == "" && !opts.Global {
		return nil, ErrProjectPathRequired
	}
	if opts.ProjectPath != "" && opts.Global {
		return nil, ErrGlobalWithProjectPath
	}

	var dir, packageName string
	if opts.ProjectPath != "" {
		var err error
		if dir, err = c.validatePath("update", opts.ProjectPath); err != nil {
			return nil, err
		}
		pkg, err := pkgjson.ReadFile(filepath.Join(dir, pkgjson.FileName))
		if err != nil {
			return nil, fmt.Errorf("failed to read project package.json: %w", err)
		}
		packageName = pkg.Name
	}

	specs := make([]string, 0, len(opts.Packages))
	for _, p := range opts.Packages {
		res, err := c.validateSpec("update", p, false)
		if err != nil {
			return nil, err
		}
		specs = append(specs, res.CleanSpec)
	}

	entries, err := c.outdated(ctx, dir, opts.Global, specs)
	if err != nil {
		return nil, err
	}

	target := "global packages"
	if packageName != "" {
		target = "'" + packageName + "'"
	}

	if len(entries) == 0 {
		return &UpdateResult{Actions: []string{fmt.Sprintf("No updates found for %s.", target)}}, nil
	}

	actions, installs := planUpdates(entries, opts.DryRun)
	if len(installs) == 0 {
		return &UpdateResult{Actions: actions}, nil
	}

	flags := []string{"install", "--json"}
	if opts.DryRun {
		flags = append(flags, "--dry-run")
	}
	if opts.Global {
		flags = append(flags, "--global")
	}
	line := c.registryCommand(flags, installs)

	res, err := c.runRegistry(ctx, "update", line, cmdutil.RunOptions{Dir: dir, Silent: true, NoThrow: true})
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		where := target
		if dir != "" {
			where += " at " + dir
		}
		return nil, fmt.Errorf("failed to update %s: %s", where, summarize(res))
	}

	out := strings.TrimSpace(res.Stdout)
	if !json.Valid([]byte(out)) {
		return nil, fmt.Errorf("%w: could not parse update result %q", ErrInvalidOutput, out)
	}

	return &UpdateResult{Updated: true, Actions: actions, Result: json.RawMessage(out)}, nil
}

// outdated runs `npm outdated --json`. npm exits 1 when anything is outdated,
// so only stderr output is treated as failure.
func (c *Client) outdated(ctx context.Context, dir string, global bool, specs []string) ([]outdatedEntry, error) {
	var flags []string
	if global {
		flags = append(flags, "--global")
	}
	flags = append(flags, "--json", "outdated")
	line := c.registryCommand(flags, specs)

	res, err := c.runRegistry(ctx, "outdated", line, cmdutil.RunOptions{Dir: dir, Silent: true, NoThrow: true})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Stderr) != "" {
		return nil, fmt.Errorf("failed to gather update data: command %s: stdout: %s, stderr: %s", line, res.Stdout, res.Stderr)
	}

	return parseOutdated(res.Stdout)
}

// parseOutdated decodes the `npm outdated --json` object, keeping the
// package order npm reported.
func parseOutdated(stdout string) ([]outdatedEntry, error) {
	out := strings.TrimSpace(stdout)
	if out == "" {
		return nil, nil
	}
	if !gjson.Valid(out) {
		return nil, fmt.Errorf("%w: could not parse update data '%s'", ErrInvalidOutput, out)
	}

	parsed := gjson.Parse(out)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: update data is not an object: '%s'", ErrInvalidOutput, out)
	}

	var entries []outdatedEntry
	parsed.ForEach(func(key, value gjson.Result) bool {
		entries = append(entries, outdatedEntry{
			Name:    key.String(),
			Current: value.Get("current").String(),
			Wanted:  value.Get("wanted").String(),
			Latest:  value.Get("latest").String(),
		})
		return true
	})
	return entries, nil
}

// planUpdates turns outdated entries into action messages and the
// name@wanted arguments to install.
func planUpdates(entries []outdatedEntry, dryRun bool) (actions, installs []string) {
	prefix := ""
	if dryRun {
		prefix = "DRY RUN: "
	}

	for _, e := range entries {
		if e.Current != e.Wanted {
			installs = append(installs, e.Name+"@"+e.Wanted)
			latest := ""
			if e.Wanted == e.Latest {
				latest = " (latest)"
			}
			actions = append(actions, fmt.Sprintf("%sUpdated %s@%s to %s%s", prefix, e.Name, e.Current, e.Wanted, latest))
		} else {
			actions = append(actions, fmt.Sprintf("%s@%s is the latest in-range version.", e.Name, e.Current))
		}

		if versionGreater(e.Latest, e.Current) {
			actions = append(actions, fmt.Sprintf("Update available for %s@%s to %s, but was not automatically installed.", e.Name, e.Current, e.Latest))
		}
	}
	return actions, installs
}

// versionGreater reports whether a > b as semantic versions, prereleases
// included. Either side failing to parse yields false.
func versionGreater(a, b string) bool {
	va, vb := "v"+a, "v"+b
	if !semver.IsValid(va) || !semver.IsValid(vb) {
		return false
	}
	return semver.Compare(va, vb) > 0
}

func summarize(res *cmdutil.Result) string {
	if s := strings.TrimSpace(res.Stderr); s != "" {
		return fmt.Sprintf("exit code %d: %s", res.Code, s)
	}
	return fmt.Sprintf("exit code %d", res.Code)
}
