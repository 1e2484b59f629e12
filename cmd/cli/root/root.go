package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:   "notes",
	Short: "Notes API CLI",
	Long: `Command line interface for the notes API.
Set NOTES_API_URL to point at a server other than http://localhost:8080.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
