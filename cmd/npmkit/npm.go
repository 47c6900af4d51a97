package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jongio/npmkit/cliout"
	"github.com/jongio/npmkit/npm"
	"github.com/jongio/npmkit/pathutil"
)

func newInstallCommand(a *app) *cobra.Command {
	var opts npm.InstallOptions
	var devPaths []string
	cmd := &cobra.Command{
		Use:   "install <spec>...",
		Short: "Install packages, preferring local checkouts found in dev paths",
		Example: `  npmkit install lodash@^4.17.21 --save-prod
  npmkit install @acme/widgets --dev-path ~/src
  npmkit install typescript --global`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.npmClient()
			if err != nil {
				return err
			}

			opts.Packages = args
			if cmd.Flags().Changed("dev-path") {
				opts.DevPaths = devPaths
			}
			if !opts.Global {
				opts.ProjectPath = projectDir(opts.ProjectPath)
			}

			spinner := a.startProgress(fmt.Sprintf("Installing %s", strings.Join(args, " ")), opts.Verbose)
			if spinner != nil {
				opts.OnLine = spinner.Update
			}
			res, err := client.Install(cmd.Context(), opts)
			finishProgress(spinner, err)
			if err != nil {
				return err
			}
			return cliout.Print(res, func() {
				cliout.Success("Installed %d package(s)", len(res.InstalledPackages))
				for _, p := range res.ProductionPackages {
					cliout.ItemSuccess("%s", p)
				}
				for _, p := range res.LocalPackages {
					cliout.ItemSuccess("%s (local)", p)
				}
			})
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&opts.Global, "global", "g", false, "install globally")
	flags.StringVarP(&opts.ProjectPath, "project", "p", "", "project directory (default: nearest package.json root)")
	flags.BoolVarP(&opts.SaveDev, "save-dev", "D", false, "save to devDependencies")
	flags.BoolVarP(&opts.SaveProd, "save-prod", "P", false, "save to dependencies")
	flags.StringSliceVar(&devPaths, "dev-path", nil, "directory holding local package checkouts (repeatable, overrides config)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "stream npm output")
	return cmd
}

func newUpdateCommand(a *app) *cobra.Command {
	var opts npm.UpdateOptions
	cmd := &cobra.Command{
		Use:   "update [spec]...",
		Short: "Update packages to the newest version their ranges allow",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.npmClient()
			if err != nil {
				return err
			}

			opts.Packages = args
			if !opts.Global {
				opts.ProjectPath = projectDir(opts.ProjectPath)
			}

			spinner := a.startProgress("Checking for updates", false)
			res, err := client.Update(cmd.Context(), opts)
			finishProgress(spinner, err)
			if err != nil {
				return err
			}
			return cliout.Print(res, func() {
				if !res.Updated {
					cliout.Info("Nothing installed")
				}
				for _, action := range res.Actions {
					cliout.Bullet("%s", action)
				}
			})
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&opts.Global, "global", "g", false, "update global packages")
	flags.StringVarP(&opts.ProjectPath, "project", "p", "", "project directory (default: nearest package.json root)")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "report updates without installing")
	return cmd
}

func newViewCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <name> [version]",
		Short: "Show registry metadata for a package",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.npmClient()
			if err != nil {
				return err
			}

			opts := npm.ViewOptions{PackageName: args[0]}
			if len(args) == 2 {
				opts.Version = args[1]
			}

			data, err := client.View(cmd.Context(), opts)
			if err != nil {
				return err
			}

			meta, ok := data.(map[string]any)
			if !ok || cliout.IsJSON() {
				return cliout.PrintJSON(data)
			}
			cliout.Header(field(meta, "name"))
			for _, key := range []string{"version", "description", "license", "homepage"} {
				if v := field(meta, key); v != "" {
					cliout.Label(strings.ToUpper(key[:1])+key[1:], v)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.noCache, "no-cache", false, "query the registry even when cached metadata is fresh")
	return cmd
}

func field(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

type toolsReport struct {
	*npm.ToolVersions
	NodePath string `json:"nodePath,omitempty"`
	NpmPath  string `json:"npmPath,omitempty"`
}

func newToolVersionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tool-versions",
		Short: "Show the installed node and npm versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.npmClient()
			if err != nil {
				return err
			}
			versions, err := client.Versions(cmd.Context())
			if err != nil {
				for _, tool := range []string{"node", client.Binary()} {
					if _, missing := pathutil.RequireTool(tool); missing != nil {
						return fmt.Errorf("%w: %w", missing, err)
					}
				}
				return err
			}

			report := toolsReport{
				ToolVersions: versions,
				NodePath:     pathutil.FindTool("node"),
				NpmPath:      pathutil.FindTool(client.Binary()),
			}
			return cliout.Print(report, func() {
				cliout.Label("node", versions.Node)
				cliout.Label(client.Binary(), versions.Npm)
			})
		},
	}
}

func newCacheCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached registry metadata",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached registry entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.cache()
			if store == nil {
				return errors.New("no cache directory configured; set cacheDir or NPMKIT_CACHE_DIR")
			}
			if err := store.Clear(); err != nil {
				return err
			}
			return cliout.Print(map[string]string{"cleared": store.Dir()}, func() {
				cliout.Success("Cleared %s", store.Dir())
			})
		},
	})
	return cmd
}
