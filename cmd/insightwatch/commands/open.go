package commands

import (
	"fmt"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the hosted web dashboard in the browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Opening %s\n", cfg.DashboardURL)
		return browser.OpenURL(cfg.DashboardURL)
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
