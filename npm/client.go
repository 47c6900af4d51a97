package npm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/jongio/npmkit/cmdutil"
	"github.com/jongio/npmkit/logutil"
	"github.com/jongio/npmkit/pkgspec"
	"github.com/jongio/npmkit/security"
	"github.com/jongio/npmkit/shellutil"
	"github.com/jongio/npmkit/urlutil"
)

// DefaultBinary is the package manager invoked when Config.Binary is empty.
const DefaultBinary = "npm"

// Registry circuit breaker defaults.
const (
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 30 * time.Second
)

// Config configures a Client. The zero value is usable.
type Config struct {
	// Runner executes command lines. Nil uses cmdutil.NewShellRunner().
	Runner cmdutil.Runner
	// Binary is the package manager executable: npm, pnpm or yarn.
	Binary string
	// DevPaths are searched for local checkouts when InstallOptions.DevPaths is nil.
	DevPaths []string
	// Logger receives audit and debug records. Nil uses the "npm" component logger.
	Logger *logutil.ComponentLogger
	// BreakerFailures is the number of consecutive registry failures that
	// open the breaker. Zero uses DefaultBreakerFailures.
	BreakerFailures int
	// BreakerTimeout is how long the breaker stays open. Zero uses DefaultBreakerTimeout.
	BreakerTimeout time.Duration
	// Registry is the npm registry URL passed as --registry. Empty uses
	// npm's own configuration.
	Registry string
	// Cache keeps View results between calls. Nil disables caching.
	Cache MetadataCache
	// RegistryLimiter paces command lines that reach the registry (view,
	// outdated and install). Nil leaves them unpaced.
	RegistryLimiter *rate.Limiter
}

// MetadataCache stores registry metadata by key. *cache.Manager implements it.
type MetadataCache interface {
	Get(key string, target any) (bool, error)
	Set(key string, data any) error
}

// Client runs npm operations on validated, shell-escaped input.
type Client struct {
	runner   cmdutil.Runner
	binary   string
	devPaths []string
	log      *logutil.ComponentLogger
	registry *gobreaker.CircuitBreaker
	cache    MetadataCache
	limiter  *rate.Limiter
	// registryURL is the --registry value; empty when unset.
	registryURL string
}

// New returns a Client for cfg. The binary must be an allowed package
// manager and every dev path must pass path validation.
func New(cfg Config) (*Client, error) {
	binary := cfg.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	if err := security.ValidatePackageManager(binary); err != nil {
		return nil, err
	}

	devPaths, err := cleanPaths(cfg.DevPaths)
	if err != nil {
		return nil, fmt.Errorf("invalid dev path: %w", err)
	}

	registryURL := strings.TrimSpace(cfg.Registry)
	if registryURL != "" {
		if err := urlutil.ValidateRegistry(registryURL); err != nil {
			return nil, fmt.Errorf("invalid registry: %w", err)
		}
	}

	runner := cfg.Runner
	if runner == nil {
		runner = cmdutil.NewShellRunner()
	}

	log := cfg.Logger
	if log == nil {
		log = logutil.NewLogger("npm")
	}

	c := &Client{
		runner:      runner,
		binary:      binary,
		devPaths:    devPaths,
		log:         log,
		cache:       cfg.Cache,
		limiter:     cfg.RegistryLimiter,
		registryURL: registryURL,
	}
	c.registry = newRegistryBreaker(cfg.BreakerFailures, cfg.BreakerTimeout, log)
	return c, nil
}

// Binary returns the package manager executable the client invokes.
func (c *Client) Binary() string {
	return c.binary
}

func cleanPaths(paths []string) ([]string, error) {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		v, err := security.ValidatePath(p, "")
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, v)
	}
	return cleaned, nil
}

// validateSpec runs spec through the package spec rules and records a
// rejection. The returned error is the *security.ValidationError.
func (c *Client) validateSpec(operation, spec string, allowFile bool) (*pkgspec.ValidationResult, error) {
	res, err := pkgspec.Validate(spec, pkgspec.Options{AllowFilePackages: allowFile})
	if err != nil {
		return nil, err
	}
	if !res.IsValid {
		c.reject(operation, spec, res.Kind, res.ErrorMsg)
		return nil, res.Err()
	}
	return res, nil
}

// validatePath runs a caller-supplied path through the path rules and
// records a rejection.
func (c *Client) validatePath(operation, path string) (string, error) {
	cleaned, err := security.ValidatePath(path, "")
	if err != nil {
		c.reject(operation, path, security.Kind(err), err.Error())
		return "", err
	}
	return cleaned, nil
}

func (c *Client) reject(operation, input string, kind error, msg string) {
	rule := security.RuleName(kind)
	recordRejection(operation, rule)
	c.log.WithOperation(operation).Rejected(input, rule, msg)
}

// command joins the binary, literal flags and escaped values into a command
// line. Flags are trusted constants; values are always escaped.
func (c *Client) command(flags []string, values []string) string {
	parts := make([]string, 0, 1+len(flags)+len(values))
	parts = append(parts, c.binary)
	parts = append(parts, flags...)
	for _, v := range values {
		parts = append(parts, shellutil.EscapeArg(v))
	}
	return strings.Join(parts, " ")
}

// registryCommand is command for operations that talk to the registry: the
// configured --registry is added after flags.
func (c *Client) registryCommand(flags []string, values []string) string {
	if c.registryURL != "" {
		flags = append(flags[:len(flags):len(flags)], "--registry", shellutil.EscapeArg(c.registryURL))
	}
	return c.command(flags, values)
}

// run executes line, logging it at debug level and recording metrics.
func (c *Client) run(ctx context.Context, operation, line string, opts cmdutil.RunOptions) (*cmdutil.Result, error) {
	cmdLog := c.log.WithOperation(operation).Command(line, opts.Dir)
	res, err := c.runner.Run(ctx, line, opts)

	code := -1
	if res != nil {
		code = res.Code
	}
	elapsed := cmdLog.Finish(code, err)
	recordCommand(operation, err != nil || code != 0, elapsed)
	return res, err
}

// waitRegistry blocks until the registry limiter grants a slot for
// operation. It fails without waiting when ctx would expire first.
func (c *Client) waitRegistry(ctx context.Context, operation string) error {
	if c.limiter == nil {
		return nil
	}

	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	waited := time.Since(start)
	recordLimiterWait(operation, waited)
	if waited >= time.Millisecond {
		c.log.WithOperation(operation).Debug("waited for registry rate limit", "duration", waited)
	}
	return nil
}

// runRegistry is run for registry-bound command lines.
func (c *Client) runRegistry(ctx context.Context, operation, line string, opts cmdutil.RunOptions) (*cmdutil.Result, error) {
	if err := c.waitRegistry(ctx, operation); err != nil {
		return nil, err
	}
	return c.run(ctx, operation, line, opts)
}
