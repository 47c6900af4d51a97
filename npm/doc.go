// Package npm drives the npm CLI for install, update, view and version
// queries.
//
// Every caller-supplied package spec and path is validated with pkgspec and
// security before a command line is built, and every value interpolated into
// a command line is quoted with shellutil.EscapeArg. Rejected input is logged
// at warn level with its rule name and counted in
// npmkit_rejected_inputs_total.
//
// Registry lookups made by View pass through a circuit breaker: after
// repeated network failures, View returns ErrRegistryUnavailable without
// invoking npm until the breaker's timeout elapses.
package npm
