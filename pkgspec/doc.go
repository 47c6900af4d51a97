// Package pkgspec validates and parses npm package specifiers.
//
// A specifier is a registry reference (name, @org/name, either optionally
// followed by @version or @dist-tag) or a local reference prefixed with
// "file:". Validate is the gate every specifier passes before it is escaped
// and placed on an npm command line.
//
// # Rule Order
//
// Registry specifiers are checked in a fixed order. Security rules run first
// so that hostile input is reported by the dangerous pattern it contains:
//
//  1. ".." or a backslash in the name (security.ErrPathTraversal)
//  2. shell metacharacters in the name or version (security.ErrShellInjection)
//  3. reserved names such as node_modules (security.ErrReservedName)
//  4. the npm name grammar (security.ErrFormatViolation)
//  5. the 214 character length limit (security.ErrFormatViolation)
//
// "file:" specifiers are refused unless Options.AllowFilePackages is set.
// When allowed, their path may contain ".." and must name an existing
// .tgz/.tar.gz archive or a directory holding package.json.
//
// # Modes
//
// The same rules back both call conventions:
//
//	res, _ := pkgspec.Validate(spec, pkgspec.Options{})
//	if !res.IsValid {
//	    return fmt.Errorf("rejected: %s", res.ErrorMsg)
//	}
//
//	res, err := pkgspec.MustValidate(spec, pkgspec.Options{AllowFilePackages: true})
//	if err != nil {
//	    return err // *security.ValidationError, HTTP 400
//	}
package pkgspec
