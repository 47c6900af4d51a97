// Package cliout formats npmkit command output.
//
// # Output Formats
//
// SetFormat selects "default" (human-readable) or "json". Commands build a
// result value and call Print, which encodes the value as indented JSON in
// json mode and runs the formatter otherwise:
//
//	_ = cliout.Print(result, func() {
//	    cliout.Success("Valid package spec")
//	    cliout.Label("Name", result.PackageName)
//	})
//
// # Colors and Symbols
//
// ANSI colors are emitted only when stdout is a terminal and NO_COLOR is not
// set. NoColor and ForceColor override the detection. Status symbols fall
// back to ASCII ([+], [-], [!], [i]) on consoles without Unicode support.
package cliout
