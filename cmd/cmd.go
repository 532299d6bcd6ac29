// Package cmd contains the command-line entry points for the easel server.
package cmd

import (
	"fmt"
	"os"
)

// Execute dispatches to the requested subcommand. With no arguments the
// server is started, matching how the binary runs in containers.
func Execute() error {
	return run(os.Args[1:])
}

func run(args []string) error {
	if len(args) == 0 {
		return runServe()
	}

	switch args[0] {
	case "serve":
		return runServe()
	case "migrate":
		return runMigrate()
	case "version":
		return runVersion()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `easel - conversational agent server

Usage:
  easel [command]

Commands:
  serve     Start the HTTP server (default)
  migrate   Run database migrations and exit
  version   Print version information
  help      Show this help
`)
}
