// Package shellutil escapes strings for safe interpolation into shell command
// lines.
//
// The escaper is the last step before a command line is assembled: values
// must already have passed pkgspec or security validation. Escaping never
// fails on content, and the result is always read back by the target shell
// as exactly one literal argument.
//
// # Quoting Rules
//
// POSIX shells (sh, bash, zsh):
//
//	hello      → 'hello'
//	it's       → 'it'\''s'
//	(empty)    → ''
//
// Windows cmd.exe (MSVCRT argument parsing):
//
//	hello      → "hello"
//	a\b"c      → "a\b\"c"
//	dir\       → "dir\\"
//	(empty)    → ""
//
// PowerShell (powershell, pwsh), through EscapeArgFor only:
//
//	hello      → 'hello'
//	it's       → 'it''s'
//	$env:HOME  → '$env:HOME'
//
// # Platform Selection
//
// EscapeArg and JoinArgs pick the rule from runtime.GOOS: cmd on Windows,
// POSIX elsewhere. They escape for the local invoking shell only, never for a
// remote system. Use EscapeArgFor to target a shell explicitly.
//
// # Example Usage
//
//	line := "npm view --json " + shellutil.EscapeArg(spec)
//
//	line := "npm install " + shellutil.JoinArgs(specs...)
package shellutil
