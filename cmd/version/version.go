package version

import (
	"github.com/learningorchestra/orchestra/internal/version"
	"github.com/spf13/cobra"
)

func NewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("orchestra version", version.Full())
		},
	}
}
