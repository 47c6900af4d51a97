package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/jongio/npmkit/cache"
	"github.com/jongio/npmkit/cliout"
	"github.com/jongio/npmkit/cmdutil"
	"github.com/jongio/npmkit/config"
	"github.com/jongio/npmkit/logutil"
	"github.com/jongio/npmkit/npm"
	"github.com/jongio/npmkit/pkgjson"
	"github.com/jongio/npmkit/progress"
	"github.com/jongio/npmkit/version"
)

// reportedError marks an error whose details were already written as command
// output. main exits non-zero without printing it again.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// formatValue is the --output flag, checked when the flag is parsed.
type formatValue string

var _ pflag.Value = (*formatValue)(nil)

func (f *formatValue) String() string { return string(*f) }
func (f *formatValue) Type() string   { return "format" }

func (f *formatValue) Set(s string) error {
	if _, err := cliout.ParseFormat(s); err != nil {
		return err
	}
	*f = formatValue(s)
	return nil
}

type app struct {
	configPath string
	debug      bool
	output     formatValue

	runner  cmdutil.Runner
	noCache bool
	cfg     *config.Config
	client  *npm.Client

	// progressOut receives spinners. Nil draws on stderr when it is a
	// terminal.
	progressOut io.Writer
}

// setup resolves config (file, env, then flags) and applies it to the
// process-wide logger and output format.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = a.debug
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = string(a.output)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	structured, _ := logutil.ParseFormat(cfg.LogFormat)
	logutil.SetupLogger(cfg.Debug, structured)
	if err := cliout.SetFormat(cfg.Output); err != nil {
		return err
	}

	a.cfg = cfg
	a.client = nil
	return nil
}

func (a *app) npmClient() (*npm.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	npmCfg := npm.Config{
		Runner:   a.runner,
		Binary:   a.cfg.NPMBinary,
		DevPaths: a.cfg.DevPaths,
		Registry: a.cfg.Registry,
	}
	if a.cfg.RegistryRate > 0 {
		npmCfg.RegistryLimiter = rate.NewLimiter(rate.Limit(a.cfg.RegistryRate), 1)
	}
	if store := a.cache(); store != nil && !a.noCache {
		npmCfg.Cache = store
	}
	client, err := npm.New(npmCfg)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// cache returns the registry metadata cache, or nil when no cache
// directory is configured. Entries written by another npmkit version are
// ignored.
func (a *app) cache() *cache.Manager {
	if a.cfg.CacheDir == "" {
		return nil
	}
	return cache.NewManager(cache.Options{
		Dir:     a.cfg.CacheDir,
		TTL:     a.cfg.CacheTTL,
		Version: version.Version,
	})
}

// projectDir returns dir, or the package root above the working directory
// when dir is empty. No root found yields "" and npm reports the missing path.
func projectDir(dir string) string {
	if dir != "" {
		return dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	root, err := pkgjson.FindRoot(wd)
	if err != nil {
		logutil.Debug("no package root", "dir", wd, "error", err)
		return ""
	}
	return root
}

// startProgress starts a spinner for a long npm command. It returns nil when
// quiet is set, output is JSON or there is no terminal to draw on.
func (a *app) startProgress(description string, quiet bool) *progress.Spinner {
	if quiet || cliout.IsJSON() {
		return nil
	}
	out := a.progressOut
	if out == nil {
		if !progress.Enabled(os.Stderr) {
			return nil
		}
		out = os.Stderr
	}
	s := progress.New(out, description)
	s.Start()
	return s
}

// finishProgress settles s with the outcome of the command it tracked.
func finishProgress(s *progress.Spinner, err error) {
	switch {
	case s == nil:
	case err != nil:
		s.Fail(err)
	default:
		s.Complete()
	}
}
