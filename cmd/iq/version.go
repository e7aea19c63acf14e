package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if !verbose {
				fmt.Println(version)
				return
			}
			fmt.Printf("iq %s (%s, %s)\n", version, commit, date)
			fmt.Printf("built with %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Include commit, date and toolchain")

	return cmd
}
