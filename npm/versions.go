package npm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jongio/npmkit/cmdutil"
)

// ToolVersions holds the installed Node.js and package manager versions.
type ToolVersions struct {
	Node string `json:"node"`
	Npm  string `json:"npm"`
}

// Versions runs `node --version` and `<binary> --version`.
func (c *Client) Versions(ctx context.Context) (*ToolVersions, error) {
	node, err := c.toolVersion(ctx, "node --version")
	if err != nil {
		return nil, err
	}
	npm, err := c.toolVersion(ctx, c.command([]string{"--version"}, nil))
	if err != nil {
		return nil, err
	}
	return &ToolVersions{Node: node, Npm: npm}, nil
}

func (c *Client) toolVersion(ctx context.Context, line string) (string, error) {
	res, err := c.run(ctx, "version", line, cmdutil.RunOptions{Silent: true})
	if err != nil {
		return "", fmt.Errorf("failed to get version with %q: %w", line, err)
	}
	return strings.TrimPrefix(strings.TrimSpace(res.Stdout), "v"), nil
}
