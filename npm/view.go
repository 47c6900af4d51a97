package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jongio/npmkit/cmdutil"
	"github.com/jongio/npmkit/logutil"
)

// ViewOptions controls View.
type ViewOptions struct {
	PackageName string
	// Version is a version, range or dist-tag. Empty views the latest.
	Version string
}

// networkFailureCodes mark npm errors where the registry could not be reached.
var networkFailureCodes = []string{
	"ENOTFOUND", "ETIMEDOUT", "ECONNREFUSED", "ECONNRESET", "EAI_AGAIN", "E500", "E502", "E503", "E504",
}

// View returns the decoded output of `npm view --json` for the package.
func (c *Client) View(ctx context.Context, opts ViewOptions) (any, error) {
	if opts.PackageName == "" {
		return nil, ErrPackageNameRequired
	}

	spec := opts.PackageName
	if opts.Version != "" {
		spec += "@" + opts.Version
	}
	res, err := c.validateSpec("view", spec, false)
	if err != nil {
		return nil, err
	}

	key := "view:" + c.binary + ":" + res.CleanSpec
	if data, ok := c.cachedView(key); ok {
		return data, nil
	}

	if err := c.waitRegistry(ctx, "view"); err != nil {
		return nil, err
	}
	out, err := c.registry.Execute(func() (any, error) {
		return c.view(ctx, res.CleanSpec)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(key, out); err != nil {
			c.log.WithOperation("view").Warn("failed to cache registry metadata", "key", key, "error", err)
		}
	}
	return out, nil
}

// cachedView returns a cached view result. Unreadable entries count as misses.
func (c *Client) cachedView(key string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}

	var data any
	ok, err := c.cache.Get(key, &data)
	if err != nil {
		c.log.WithOperation("view").Warn("ignoring unreadable cache entry", "key", key, "error", err)
	}
	recordCacheLookup(ok)
	if ok {
		c.log.WithOperation("view").Debug("registry cache hit", "key", key)
	}
	return data, ok
}

func (c *Client) view(ctx context.Context, spec string) (any, error) {
	line := c.registryCommand([]string{"view", "--json"}, []string{spec})
	result, err := c.run(ctx, "view", line, cmdutil.RunOptions{Silent: true, NoThrow: true})
	if err != nil {
		return nil, err
	}

	if result.Code != 0 {
		if isNetworkFailure(result.Stderr) {
			return nil, fmt.Errorf("npm registry request for '%s' failed: %s", spec, strings.TrimSpace(result.Stderr))
		}
		return nil, &PackageNotFoundError{Spec: spec}
	}

	var data any
	if err := json.Unmarshal([]byte(result.Stdout), &data); err != nil {
		return nil, fmt.Errorf("%w: could not parse npm view output for '%s': %v", ErrInvalidOutput, spec, err)
	}
	return data, nil
}

func isNetworkFailure(stderr string) bool {
	for _, code := range networkFailureCodes {
		if strings.Contains(stderr, code) {
			return true
		}
	}
	return false
}

// newRegistryBreaker guards registry lookups. Lookups that reach the
// registry, including unknown packages, count as successes.
func newRegistryBreaker(failures int, timeout time.Duration, log *logutil.ComponentLogger) *gobreaker.CircuitBreaker {
	if failures <= 0 {
		failures = DefaultBreakerFailures
	}
	if timeout <= 0 {
		timeout = DefaultBreakerTimeout
	}

	settings := gobreaker.Settings{
		Name:        "npm-registry",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPackageNotFound) || errors.Is(err, ErrInvalidOutput)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			recordBreakerState(to)
			log.Warn("registry circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}
