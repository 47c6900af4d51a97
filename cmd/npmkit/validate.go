package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jongio/npmkit/cliout"
	"github.com/jongio/npmkit/pkgspec"
	"github.com/jongio/npmkit/security"
	"github.com/jongio/npmkit/shellutil"
)

type specReport struct {
	*pkgspec.ValidationResult
	Rule string `json:"rule,omitempty"`
}

func newValidateCommand() *cobra.Command {
	var allowFile bool
	cmd := &cobra.Command{
		Use:   "validate <spec>",
		Short: "Check that a package spec is safe to pass to npm",
		Example: `  npmkit validate lodash@^4.17.21
  npmkit validate @scope/pkg
  npmkit validate --allow-file file:../local-pkg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := pkgspec.Validate(args[0], pkgspec.Options{AllowFilePackages: allowFile})
			if err != nil {
				return err
			}

			report := specReport{ValidationResult: res}
			if !res.IsValid {
				report.Rule = security.RuleName(res.Kind)
			}

			err = cliout.Print(report, func() {
				if !res.IsValid {
					cliout.Error("%s", res.ErrorMsg)
					cliout.Label("Rule", report.Rule)
					return
				}
				cliout.Success("Valid package spec")
				if res.IsFilePackage {
					cliout.Label("File", res.ResolvedPath)
					return
				}
				cliout.Label("Name", res.PackageName)
				if res.VersionPart != "" {
					cliout.Label("Version", res.VersionPart)
				}
			})
			if err != nil {
				return err
			}
			return reported(res.Err())
		},
	}
	cmd.Flags().BoolVar(&allowFile, "allow-file", false, "accept file: specs")
	return cmd
}

type pathReport struct {
	Path    string `json:"path"`
	Base    string `json:"base,omitempty"`
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
	Rule    string `json:"rule,omitempty"`
}

func newCheckPathCommand() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "check-path <path>",
		Short: "Check that a path is free of shell metacharacters and stays inside a base directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cleaned, verr := security.ValidatePath(args[0], base)

			report := pathReport{Path: cleaned, Base: base, IsValid: verr == nil}
			if verr != nil {
				report.Path = args[0]
				report.Error = verr.Error()
				report.Rule = security.RuleName(security.Kind(verr))
			}

			err := cliout.Print(report, func() {
				if verr != nil {
					cliout.Error("%s", report.Error)
					cliout.Label("Rule", report.Rule)
					return
				}
				cliout.Success("Valid path")
				cliout.Label("Path", cleaned)
			})
			if err != nil {
				return err
			}
			return reported(verr)
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "directory the path must resolve inside")
	return cmd
}

type escapeReport struct {
	Shell   string `json:"shell"`
	Value   string `json:"value"`
	Escaped string `json:"escaped"`
}

func newEscapeCommand() *cobra.Command {
	var shell string
	cmd := &cobra.Command{
		Use:   "escape <value>",
		Short: "Quote a value as a single literal shell argument",
		Example: `  npmkit escape "it's here"
  npmkit escape --shell cmd "C:\Program Files\node"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if shell == "" {
				shell = shellutil.LocalShell()
			}
			escaped, err := shellutil.EscapeArgFor(shell, args[0])
			if err != nil {
				return err
			}
			report := escapeReport{Shell: shell, Value: args[0], Escaped: escaped}
			return cliout.Print(report, func() {
				fmt.Println(escaped)
			})
		},
	}
	cmd.Flags().StringVar(&shell, "shell", "", "target shell: sh, bash, zsh, cmd, powershell or pwsh (default: local shell)")
	return cmd
}
