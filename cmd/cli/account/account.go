package account

import (
	"fmt"

	"github.com/crucial707/notes-api/cmd/cli/config"
	"github.com/crucial707/notes-api/cmd/cli/output"
	"github.com/spf13/cobra"
)

// ==========================
// Init Account
// ==========================
func InitAccount(rootCmd *cobra.Command) {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your account",
	}

	accountCmd.AddCommand(
		whoamiCmd(),
		passwordCmd(),
		deleteAccountCmd(),
		activityCmd(),
	)

	rootCmd.AddCommand(accountCmd)
}

// ==========================
// Whoami
// ==========================
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Client()
			if err != nil {
				return err
			}
			u, err := c.Profile(cmd.Context())
			if err != nil {
				return err
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Username", "Created"},
				[][]interface{}{{u.ID, u.Username, u.CreatedAt.Local().Format("2006-01-02 15:04")}})
			return nil
		},
	}
}

// ==========================
// Password
// ==========================
func passwordCmd() *cobra.Command {
	var oldPassword, newPassword string

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if oldPassword == "" {
				if oldPassword, err = config.Prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Current password"); err != nil {
					return err
				}
			}
			if newPassword == "" {
				if newPassword, err = config.Prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "New password"); err != nil {
					return err
				}
			}
			c, err := config.Client()
			if err != nil {
				return err
			}
			if err := c.ChangePassword(cmd.Context(), oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
			return nil
		},
	}

	cmd.Flags().StringVar(&oldPassword, "old", "", "current password; prompted when omitted")
	cmd.Flags().StringVar(&newPassword, "new", "", "new password; prompted when omitted")
	return cmd
}

// ==========================
// Delete
// ==========================
func deleteAccountCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account and every note in it",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if password == "" {
				if password, err = config.Prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Password"); err != nil {
					return err
				}
			}
			c, err := config.Client()
			if err != nil {
				return err
			}
			if err := c.DeleteAccount(cmd.Context(), password); err != nil {
				return err
			}
			if _, err := config.RemoveToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account deleted.")
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password confirmation; prompted when omitted")
	return cmd
}

// ==========================
// Activity
// ==========================
func activityCmd() *cobra.Command {
	var limit, offset int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show your recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Client()
			if err != nil {
				return err
			}
			items, err := c.Activity(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), items)
			}
			rows := make([][]interface{}, 0, len(items))
			for _, e := range items {
				rows = append(rows, []interface{}{e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Action, e.ResourceType, e.ResourceID, output.Truncate(e.Details, 40)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"When", "Action", "Resource", "ID", "Details"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}
