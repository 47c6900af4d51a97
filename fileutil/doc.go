// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package fileutil provides the file system helpers behind package.json
// discovery and config persistence.
//
//   - FindUp locates the nearest ancestor directory holding a file
//   - ReadJSON decodes a JSON file
//   - AtomicWriteFile and AtomicWriteJSON write through a temp file and rename,
//     retrying the rename up to 5 times with a 20ms stepped backoff
//
// Directories are created with 0750 permissions and files with 0644, or 0600
// for configuration.
package fileutil
