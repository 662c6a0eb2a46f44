// Package main is the entry point for the Apothek terminal admin console.
// It authenticates against a running API server and opens the interactive
// category management view.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"apothek/internal/adminui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		server   string
		email    string
		password string
		totpCode string
	)

	cmd := &cobra.Command{
		Use:   "apothek-admin",
		Short: "Terminal console for managing the Apothek category taxonomy",
		Long: `apothek-admin connects to a running Apothek API server and opens an
interactive console for managing the two-level product category tree:
create, edit, and delete categories and subcategories.

The password can also be supplied via the APOTHEK_ADMIN_PASSWORD
environment variable to keep it out of shell history.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("APOTHEK_ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("email and password are required (--email, --password or APOTHEK_ADMIN_PASSWORD)")
			}

			client, err := adminui.NewClient(server)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			needs2FA, err := client.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if needs2FA {
				if totpCode == "" {
					return errors.New("this account requires a TOTP code (--totp)")
				}
				if err := client.Verify2FA(ctx, totpCode); err != nil {
					return fmt.Errorf("two-factor verification: %w", err)
				}
			}

			p := tea.NewProgram(adminui.NewModel(client), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "http://localhost:8080", "API server base URL")
	cmd.Flags().StringVarP(&email, "email", "e", "", "admin account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin account password")
	cmd.Flags().StringVar(&totpCode, "totp", "", "TOTP code for accounts with two-factor enabled")

	return cmd
}
