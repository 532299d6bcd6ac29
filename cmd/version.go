package cmd

import "fmt"

// Set at build time via -ldflags.
var (
	AppVersion = "dev"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

func runVersion() error {
	fmt.Printf("easel %s\n", AppVersion)
	fmt.Printf("  build time: %s\n", BuildTime)
	fmt.Printf("  git commit: %s\n", GitCommit)
	return nil
}
