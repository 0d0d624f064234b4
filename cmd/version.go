package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thevectorguy/conversa-ai/pkg/buildinfo"
)

// NewVersionCommand creates the 'version' command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("conversa %s (commit %s, built %s)\n",
				buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		},
	}
}
