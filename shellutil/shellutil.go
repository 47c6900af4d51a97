// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package shellutil

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unicode/utf8"
)

// Shell identifiers used for argument escaping.
const (
	// ShellBash is the Bourne Again Shell.
	ShellBash = "bash"

	// ShellCmd is the Windows Command Prompt.
	ShellCmd = "cmd"

	// ShellPowerShell is Windows PowerShell (5.1 and earlier).
	ShellPowerShell = "powershell"

	// ShellPwsh is PowerShell Core (6.0+, cross-platform).
	ShellPwsh = "pwsh"

	// ShellSh is the POSIX shell.
	ShellSh = "sh"

	// ShellZsh is the Z Shell.
	ShellZsh = "zsh"
)

// Operating system identifiers.
const (
	// osWindows identifies the Windows operating system.
	osWindows = "windows"
)

// ErrUnsupportedShell is returned by EscapeArgFor for shells without a quoting rule.
var ErrUnsupportedShell = errors.New("unsupported shell")

// LocalShell returns the shell that command lines are handed to on this
// machine: cmd on Windows, sh everywhere else.
func LocalShell() string {
	if runtime.GOOS == osWindows {
		return ShellCmd
	}
	return ShellSh
}

// EscapeArg escapes value so that, placed verbatim in a command line for the
// local shell, it is read back as exactly one literal argument equal to value.
func EscapeArg(value string) string {
	if runtime.GOOS == osWindows {
		return QuoteCmd(value)
	}
	return QuotePOSIX(value)
}

// EscapeArgFor escapes value for an explicitly named target shell.
func EscapeArgFor(shell, value string) (string, error) {
	switch strings.ToLower(shell) {
	case ShellSh, ShellBash, ShellZsh:
		return QuotePOSIX(value), nil
	case ShellCmd:
		return QuoteCmd(value), nil
	case ShellPowerShell, ShellPwsh:
		return QuotePowerShell(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedShell, shell)
	}
}

// QuotePOSIX wraps value in single quotes. Every embedded single quote is
// replaced by '\'' (close quote, escaped quote, reopen quote).
func QuotePOSIX(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// QuoteCmd wraps value in double quotes following the MSVCRT argument rules:
// a backslash run followed by a double quote is doubled and the quote is
// escaped, and a backslash run at the end of value is doubled so that it
// does not escape the closing quote.
func QuoteCmd(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')

	backslashes := 0
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch c {
		case '\\':
			backslashes++
		case '"':
			b.WriteString(strings.Repeat(`\`, backslashes*2+1))
			b.WriteByte('"')
			backslashes = 0
		default:
			b.WriteString(strings.Repeat(`\`, backslashes))
			b.WriteByte(c)
			backslashes = 0
		}
	}
	b.WriteString(strings.Repeat(`\`, backslashes*2))

	b.WriteByte('"')
	return b.String()
}

// powerShellQuotes are the characters PowerShell accepts as a single quote.
const powerShellQuotes = "'\u2018\u2019\u201A\u201B"

// QuotePowerShell wraps value in a verbatim (single-quoted) PowerShell string.
// Inside one, only a quote character is special, and it is written twice.
// PowerShell also closes the string on the typographic quotes U+2018 to
// U+201B, so those are doubled as well.
func QuotePowerShell(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(value); {
		r, size := utf8.DecodeRuneInString(value[i:])
		chunk := value[i : i+size]
		if r != utf8.RuneError && strings.ContainsRune(powerShellQuotes, r) {
			b.WriteString(chunk)
		}
		b.WriteString(chunk)
		i += size
	}
	b.WriteByte('\'')
	return b.String()
}

// JoinArgs escapes each argument for the local shell and joins them with
// single spaces.
func JoinArgs(args ...string) string {
	escaped := make([]string, len(args))
	for i, arg := range args {
		escaped[i] = EscapeArg(arg)
	}
	return strings.Join(escaped, " ")
}
