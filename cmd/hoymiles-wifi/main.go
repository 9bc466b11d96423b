// Command hoymiles-wifi is a CLI wrapper around pkg/dtu, the wire-protocol
// transport for the Hoymiles/solar-DTU family of devices (spec.md §6). It
// is out of scope for the core transport itself; it exists only to give
// the library a runnable surface, the way Zate-go-at2plus/cmd/at2plus
// gives pkg/at2plus one.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// exit codes per spec.md §6.
const (
	exitSuccess      = 0
	exitInvalidVerb  = 1
	exitNoResponse   = 2
)

var rootCmd = newRootCmd()

func main() {
	configureLogging()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// configureLogging installs a slog.Logger whose level is driven by the
// LOGLEVEL environment variable (spec.md §6); no other environment
// variable is consulted.
func configureLogging() {
	level := slog.LevelInfo
	switch strings.ToUpper(os.Getenv("LOGLEVEL")) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	case "INFO", "":
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// exitCodeFor maps a command failure to spec.md §6's exit codes: 2 when
// the device never answered, 1 otherwise (invalid verb / any other
// caller error).
func exitCodeFor(err error) int {
	if isNoResponseErr(err) {
		return exitNoResponse
	}
	return exitInvalidVerb
}
