package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "attendancectl",
		Short:        "Operate the attendance service from the command line",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(runAutoLogoutCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
