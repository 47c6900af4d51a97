// Package config holds npmkit settings.
//
// Settings are resolved in three layers: built-in defaults, then the YAML
// file (.npmkit.yaml in the working directory, or the path given with
// --config), then NPMKIT_* environment variables:
//
//	npm: pnpm
//	devPaths:
//	  - /src/packages
//	logFormat: json
//
// NPMKIT_DEV_PATHS takes a comma-separated list. Unknown keys in the file are
// rejected.
package config
