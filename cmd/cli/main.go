package main

import (
	"fmt"
	"os"

	"github.com/crucial707/notes-api/cmd/cli/account"
	"github.com/crucial707/notes-api/cmd/cli/auth"
	"github.com/crucial707/notes-api/cmd/cli/notes"
	"github.com/crucial707/notes-api/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	notes.InitNotes(rootCmd)
	account.InitAccount(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
