// Package pathutil locates Node.js tooling (node, npm, pnpm, yarn).
//
// FindTool checks PATH first and then the directories installers commonly
// use (Program Files\nodejs and %APPDATA%\npm on Windows; /usr/local/bin,
// Homebrew, Volta, pnpm and yarn home directories elsewhere). On Windows,
// bare names are matched against .exe and .cmd files since the package
// managers ship as .cmd shims.
//
//	path, err := pathutil.RequireTool("pnpm")
//	if err != nil {
//	    // errors.Is(err, pathutil.ErrToolNotFound); the message carries
//	    // "Install from https://pnpm.io/installation"
//	}
package pathutil
