package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the portal and store the token pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := loginEmail
		password := loginPassword

		reader := bufio.NewReader(cmd.InOrStdin())
		if email == "" {
			fmt.Fprint(cmd.OutOrStdout(), "email: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			email = strings.TrimSpace(line)
		}
		if password == "" {
			fmt.Fprint(cmd.OutOrStdout(), "password: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			password = strings.TrimSpace(line)
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		user, err := client.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (roles: %s)\n", user.Email, strings.Join(user.Roles, ", "))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		return client.Logout(cmd.Context())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		user, err := client.CurrentUser(cmd.Context())
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
			os.Exit(1)
		}
		return printJSON(user)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "login email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "login password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
