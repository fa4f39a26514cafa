// Command livetranslate runs the live translation pipeline without the desktop UI.
//
// Usage:
//
//	livetranslate [--log-level level] <command> [args]
//
// Commands:
//
//	listen     - listen to the microphone and speak translations of foreign speech
//	translate  - translate one piece of text
//	identify   - guess a song from a lyric snippet
//	languages  - list the supported listener languages
//
// Configuration comes from the environment and an optional .env file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
