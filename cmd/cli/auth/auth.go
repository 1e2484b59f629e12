package auth

import (
	"fmt"

	"github.com/crucial707/notes-api/cmd/cli/config"
	"github.com/crucial707/notes-api/internal/client"
	"github.com/spf13/cobra"
)

// InitAuth registers register, login and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(registerCmd(), loginCmd(), logoutCmd())
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Long:  "Register a new user and store the returned token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := promptCredentials(cmd, &username, &password); err != nil {
				return err
			}
			res, err := config.AnonymousClient().Register(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}
			return storeToken(cmd, res, "Registered")
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (at least 3 characters)")
	cmd.Flags().StringVar(&password, "password", "", "Password (at least 6 characters); prompted when omitted")
	return cmd
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the notes API",
		Long:  "Authenticate and store a token locally for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := promptCredentials(cmd, &username, &password); err != nil {
				return err
			}
			res, err := config.AnonymousClient().Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			return storeToken(cmd, res, "Logged in")
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password; prompted when omitted")
	return cmd
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.RemoveToken()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			return nil
		},
	}
}

func promptCredentials(cmd *cobra.Command, username, password *string) error {
	var err error
	if *username == "" {
		if *username, err = config.Prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Username"); err != nil {
			return err
		}
	}
	if *username == "" {
		return fmt.Errorf("username is required")
	}
	if *password == "" {
		if *password, err = config.Prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Password"); err != nil {
			return err
		}
	}
	if *password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func storeToken(cmd *cobra.Command, res *client.AuthResult, verb string) error {
	if res.Token == "" {
		return fmt.Errorf("no token returned")
	}
	if err := config.SaveToken(res.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s as %s. Token stored in %s (expires %s).\n",
		verb, res.User.Username, config.TokenPath(), res.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
