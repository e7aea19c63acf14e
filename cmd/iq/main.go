package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬┌─┐
  ││─┼┐
  ┴└─┘└
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "iq",
		Short: "Server-side UI components for Go",
		Long: `iq renders declarative component markup on the server.

Component tags in a page are matched to registered controllers,
their templates are compiled against live state, and changes are
streamed to the browser as minimal DOM patches.

  • Observable state cells with automatic re-render
  • Template directives: loops, conditionals, interpolation
  • Event and input bindings between markup and controllers
  • Live preview server with hot reload`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		renderCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
