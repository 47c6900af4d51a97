// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package shellutil

import (
	"errors"
	"runtime"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// roundTripInputs covers the quote characters of both shells, whitespace,
// metacharacters and the empty string.
var roundTripInputs = []string{
	"",
	"hello",
	"hello world",
	"it's",
	"don't",
	"''",
	"'",
	`a\b"c`,
	`"quoted"`,
	`trailing\`,
	`trailing\\`,
	`\"`,
	`\\"`,
	"package; rm -rf /",
	"$(whoami)",
	"`whoami`",
	"a && b || c",
	"tab\there",
	"line\nbreak",
	"test'with\"quotes`and$vars",
	"@scope/pkg@^1.2.3",
	"~1.0.0",
	"C:\\Program Files\\nodejs\\",
}

// parsePOSIXArg parses "echo <quoted>" with a POSIX shell parser and returns
// the literal value of the single argument.
func parsePOSIXArg(t *testing.T, quoted string) string {
	t.Helper()

	file, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(strings.NewReader("echo "+quoted), "")
	require.NoError(t, err)
	require.Len(t, file.Stmts, 1)

	call, ok := file.Stmts[0].Cmd.(*syntax.CallExpr)
	require.True(t, ok, "expected a simple command")
	require.Len(t, call.Args, 2, "escaped value must stay one argument")

	value, err := expand.Literal(&expand.Config{}, call.Args[1])
	require.NoError(t, err)
	return value
}

// parseMSVCRTArgs splits a command line the way the Microsoft C runtime
// (and CommandLineToArgvW) does.
func parseMSVCRTArgs(line string) []string {
	var (
		args     []string
		cur      strings.Builder
		inQuotes bool
		hasArg   bool
	)

	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case c == '\\':
			n := 0
			for i < len(line) && line[i] == '\\' {
				n++
				i++
			}
			if i < len(line) && line[i] == '"' {
				cur.WriteString(strings.Repeat(`\`, n/2))
				if n%2 == 1 {
					cur.WriteByte('"')
					i++
				}
			} else {
				cur.WriteString(strings.Repeat(`\`, n))
			}
			hasArg = true
			continue
		case c == '"':
			inQuotes = !inQuotes
			hasArg = true
		case (c == ' ' || c == '\t') && !inQuotes:
			if hasArg {
				args = append(args, cur.String())
				cur.Reset()
				hasArg = false
			}
		default:
			cur.WriteByte(c)
			hasArg = true
		}
		i++
	}
	if hasArg {
		args = append(args, cur.String())
	}
	return args
}

func TestQuotePOSIX(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "simple", value: "hello", want: "'hello'"},
		{name: "package name", value: "package-name", want: "'package-name'"},
		{name: "single quote", value: "it's", want: `'it'\''s'`},
		{name: "another single quote", value: "don't", want: `'don'\''t'`},
		{name: "metacharacters stay inside quotes", value: "package; rm -rf /", want: "'package; rm -rf /'"},
		{name: "spaces", value: "hello world", want: "'hello world'"},
		{name: "empty", value: "", want: "''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuotePOSIX(tt.value))
		})
	}
}

func TestQuotePOSIX_ComplexString(t *testing.T) {
	escaped := QuotePOSIX("test'with\"quotes`and$vars")
	assert.True(t, strings.HasPrefix(escaped, "'test"))
	assert.True(t, strings.HasSuffix(escaped, "quotes`and$vars'"))
}

func TestQuotePOSIX_RoundTrip(t *testing.T) {
	for _, value := range roundTripInputs {
		t.Run(value, func(t *testing.T) {
			assert.Equal(t, value, parsePOSIXArg(t, QuotePOSIX(value)))
		})
	}
}

func TestQuoteCmd(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "simple", value: "hello", want: `"hello"`},
		{name: "spaces", value: "hello world", want: `"hello world"`},
		{name: "empty", value: "", want: `""`},
		{name: "embedded quote", value: `say "hi"`, want: `"say \"hi\""`},
		{name: "backslash before quote", value: `a\b"c`, want: `"a\b\"c"`},
		{name: "backslash run before quote", value: `a\\"b`, want: `"a\\\\\"b"`},
		{name: "backslash not before quote", value: `C:\dir\file`, want: `"C:\dir\file"`},
		{name: "trailing backslash", value: `dir\`, want: `"dir\\"`},
		{name: "trailing backslash run", value: `dir\\`, want: `"dir\\\\"`},
		{name: "single quote untouched", value: "it's", want: `"it's"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteCmd(tt.value))
		})
	}
}

func TestQuoteCmd_RoundTrip(t *testing.T) {
	for _, value := range roundTripInputs {
		if strings.ContainsAny(value, "\n") {
			// cmd.exe ends the command at a line break.
			continue
		}
		t.Run(value, func(t *testing.T) {
			args := parseMSVCRTArgs("prog " + QuoteCmd(value))
			require.Len(t, args, 2)
			assert.Equal(t, value, args[1])
		})
	}
}

func TestEscapeArg_LocalPlatform(t *testing.T) {
	for _, value := range []string{"", "it's", `a\b"c`} {
		got := EscapeArg(value)
		if runtime.GOOS == osWindows {
			assert.Equal(t, QuoteCmd(value), got)
		} else {
			assert.Equal(t, QuotePOSIX(value), got)
		}
	}
}

func TestLocalShell(t *testing.T) {
	want := ShellSh
	if runtime.GOOS == osWindows {
		want = ShellCmd
	}
	assert.Equal(t, want, LocalShell())
}

func TestEscapeArgFor(t *testing.T) {
	tests := []struct {
		shell   string
		value   string
		want    string
		wantErr bool
	}{
		{shell: ShellSh, value: "it's", want: `'it'\''s'`},
		{shell: ShellBash, value: "it's", want: `'it'\''s'`},
		{shell: ShellZsh, value: "a b", want: `'a b'`},
		{shell: "BASH", value: "x", want: `'x'`},
		{shell: ShellCmd, value: `a\b"c`, want: `"a\b\"c"`},
		{shell: ShellPwsh, value: "it's", want: `'it''s'`},
		{shell: ShellPowerShell, value: "$env:HOME", want: `'$env:HOME'`},
		{shell: "fish", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			got, err := EscapeArgFor(tt.shell, tt.value)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedShell), "error = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// parsePowerShellVerbatim reads one single-quoted PowerShell string and
// returns its value and whatever follows the closing quote.
func parsePowerShellVerbatim(quoted string) (string, string, bool) {
	isQuote := func(r rune) bool { return strings.ContainsRune(powerShellQuotes, r) }

	r, size := utf8.DecodeRuneInString(quoted)
	if !isQuote(r) {
		return "", "", false
	}
	var b strings.Builder
	for i := size; i < len(quoted); {
		r, size := utf8.DecodeRuneInString(quoted[i:])
		if r == utf8.RuneError || !isQuote(r) {
			b.WriteString(quoted[i : i+size])
			i += size
			continue
		}
		next, nsize := utf8.DecodeRuneInString(quoted[i+size:])
		if i+size < len(quoted) && isQuote(next) {
			b.WriteString(quoted[i : i+size])
			i += size + nsize
			continue
		}
		return b.String(), quoted[i+size:], true
	}
	return "", "", false
}

func TestQuotePowerShell(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: "", want: "''"},
		{value: "lodash", want: "'lodash'"},
		{value: "$env:HOME", want: "'$env:HOME'"},
		{value: "it's", want: "'it''s'"},
		{value: "`n;&|", want: "'`n;&|'"},
		{value: "‘x’", want: "'‘‘x’’'"},
		{value: "\xff'", want: "'\xff'''"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, QuotePowerShell(tt.value), "QuotePowerShell(%q)", tt.value)
	}
}

func TestQuotePowerShell_RoundTrip(t *testing.T) {
	inputs := append([]string{"‚‛", "'’'", "\xff\xfe"}, roundTripInputs...)
	for _, value := range inputs {
		got, rest, ok := parsePowerShellVerbatim(QuotePowerShell(value))
		require.True(t, ok, "unterminated string for %q", value)
		assert.Equal(t, value, got)
		assert.Empty(t, rest, "string for %q closed early", value)
	}
}

func TestJoinArgs(t *testing.T) {
	assert.Equal(t, "", JoinArgs())

	got := JoinArgs("install", "it's", "")
	if runtime.GOOS == osWindows {
		assert.Equal(t, `"install" "it's" ""`, got)
		return
	}
	assert.Equal(t, `'install' 'it'\''s' ''`, got)

	file, err := syntax.NewParser().Parse(strings.NewReader("npm "+got), "")
	require.NoError(t, err)
	call := file.Stmts[0].Cmd.(*syntax.CallExpr)
	require.Len(t, call.Args, 4)
}

func FuzzQuotePOSIX(f *testing.F) {
	for _, seed := range roundTripInputs {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, value string) {
		if !utf8.ValidString(value) || strings.ContainsRune(value, 0) {
			t.Skip("parser input must be valid UTF-8 without NUL")
		}
		if got := parsePOSIXArg(t, QuotePOSIX(value)); got != value {
			t.Fatalf("round trip of %q = %q", value, got)
		}
	})
}

func FuzzQuoteCmd(f *testing.F) {
	for _, seed := range roundTripInputs {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, value string) {
		if strings.ContainsAny(value, "\n\r") {
			t.Skip("cmd.exe ends the command at a line break")
		}
		args := parseMSVCRTArgs("prog " + QuoteCmd(value))
		if len(args) != 2 || args[1] != value {
			t.Fatalf("round trip of %q = %q", value, args)
		}
	})
}

func FuzzQuotePowerShell(f *testing.F) {
	for _, seed := range roundTripInputs {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, value string) {
		got, rest, ok := parsePowerShellVerbatim(QuotePowerShell(value))
		if !ok || got != value || rest != "" {
			t.Fatalf("round trip of %q = %q (rest %q)", value, got, rest)
		}
	})
}
