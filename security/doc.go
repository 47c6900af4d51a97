// Package security provides the path validation and error plumbing shared by
// every component that builds a shell command line from untrusted input.
//
// All user-provided paths should pass through ValidatePath before they are
// escaped and interpolated into a command line. Validation fails fast: no
// sanitize-then-continue path exists, and a rejected value must never reach
// the escaping step.
//
// # Path Validation
//
// ValidatePath rejects:
//   - empty and whitespace-only input (ErrMalformedInput)
//   - shell metacharacters ; & | ` $ ( ) { } [ ] < > ! * ? ~ and line breaks (ErrShellInjection)
//   - targets that resolve outside the optional base directory (ErrPathTraversal)
//
// Containment compares canonical paths (absolute, cleaned, symlinks resolved
// where they exist) with a trailing separator appended to the base, so a
// sibling such as /base-evil never passes against /base.
//
// # Errors
//
// Every rejection is a *ValidationError. Its message names the violated rule
// and its Kind is one of the sentinels:
//
//	ErrMalformedInput, ErrPathTraversal, ErrShellInjection,
//	ErrReservedName, ErrFormatViolation, ErrFileSpec
//
// These are input faults (HTTP 400), never transient:
//
//	p, err := security.ValidatePath(userPath, projectDir)
//	if errors.Is(err, security.ErrPathTraversal) {
//	    log.Warn("traversal attempt", "path", userPath)
//	}
//
// # Other Checks
//
//   - ValidatePackageManager allowlists npm-compatible clients (npm, pnpm, yarn)
//   - ValidateFilePermissions detects world-writable files on Unix
package security
