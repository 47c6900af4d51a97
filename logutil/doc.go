// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logutil provides the structured logging used across npmkit. It
// wraps slog with a process-wide logger and component-scoped child loggers.
//
// # Basic Usage
//
//	logutil.SetupLogger(debug, structured)
//
//	log := logutil.NewLogger("npm").WithOperation("install")
//	log.Rejected(spec, rule, reason)
//
//	cmd := log.Command(line, dir)
//	res, err := runner.Run(ctx, line, opts)
//	elapsed := cmd.Finish(res.Code, err)
//
// # Debug Mode
//
// Debug logging is enabled by passing debug=true to SetupLogger or by setting
// NPMKIT_DEBUG=true. Command lines handed to the shell are logged at debug
// level, so debug output may contain package names and paths.
//
// # Structured Logging
//
// With structured=true (log format "json") records are emitted as JSON:
//
//	{"time":"2026-01-15T10:30:00Z","level":"WARN","msg":"rejected input","component":"npm","input":"a;b","rule":"shell_injection"}
//
// Otherwise the slog text format is used.
package logutil
